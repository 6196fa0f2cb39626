// Package transport 提供基础传输的公共部分
//
// 具体传输位于子包：
//
//   - tcp:       /ip4/.../tcp/...
//   - websocket: /ip4/.../tcp/.../ws
//   - memory:    /memory/<port>，进程内传输，主要用于测试
//
// 各传输只负责建立原始字节流，监听器通过 EventListener 把
// Accept 循环转换为 ListenerEvent 事件流。
package transport
