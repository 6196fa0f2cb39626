// Package metrics 提供连接升级与子流协商的 Prometheus 指标
//
// 指标：
//
//	p2pnode_upgrades_total{direction,result}                 连接升级次数
//	p2pnode_upgrade_duration_seconds{direction}              连接升级耗时
//	p2pnode_substream_negotiations_total{direction,result}   子流协商次数
//	p2pnode_substream_bytes_total{direction,protocol}        子流收发字节
//	p2pnode_connections_active                               活跃连接数
//
// nil *Reporter 的所有方法都是空操作，未启用指标时可直接传 nil。
package metrics
