package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/dep2p/go-p2pnode/pkg/protocolids"
)

// Validate 验证整个配置，返回所有问题的合并错误
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	err := multierr.Combine(
		c.Identity.Validate(),
		c.Transport.Validate(),
		c.Muxer.Validate(),
	)
	seen := make(map[string]struct{}, len(c.Protocols))
	for _, p := range c.Protocols {
		if perr := protocolids.Validate(p); perr != nil {
			err = multierr.Append(err, fmt.Errorf("protocols: %w", perr))
			continue
		}
		if _, ok := seen[p]; ok {
			err = multierr.Append(err, fmt.Errorf("protocols: duplicate %q", p))
		}
		seen[p] = struct{}{}
	}
	return err
}
