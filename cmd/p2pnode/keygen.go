package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
)

var keygenForce bool

// keygenCmd 生成身份密钥
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "生成身份密钥并输出 PeerID",
	Long: `生成新的身份密钥写入 --key-file，并输出对应的 PeerID。

示例：
  p2pnode keygen --key-file node.key
  p2pnode keygen --key-file node.key --key-type secp256k1 --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.KeyFile == "" {
			return errors.New("--key-file is required")
		}
		if _, err := os.Stat(globalFlags.KeyFile); err == nil && !keygenForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", globalFlags.KeyFile)
		}

		kt, err := crypto.ParseKeyType(globalFlags.KeyType)
		if err != nil {
			return err
		}
		priv, _, err := crypto.GenerateKeyPair(kt)
		if err != nil {
			return err
		}
		if err := crypto.SaveKey(globalFlags.KeyFile, priv); err != nil {
			return err
		}
		id, err := crypto.PeerIDFromPrivateKey(priv)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", id)
		logger.Info("密钥已生成", "keyType", kt, "path", globalFlags.KeyFile, "peerID", id.ShortString())
		return nil
	},
}

func init() {
	keygenCmd.Flags().BoolVar(&keygenForce, "force", false, "覆盖已存在的密钥文件")
}
