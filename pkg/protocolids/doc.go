// Package protocolids 定义连接升级链路与示例应用使用的协议 ID
//
// 升级链路中的协议 ID 必须与对端逐字节一致，所有模块引用本包的常量，
// 不在其他位置重复字面量。
package protocolids
