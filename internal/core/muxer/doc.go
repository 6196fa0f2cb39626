// Package muxer 基于 go-yamux 实现流多路复用
//
// 会话角色由连接方向决定：出站连接为 yamux 客户端（奇数流 ID），
// 入站连接为服务端（偶数流 ID）。
package muxer
