package transport

import (
	"fmt"
	"net"

	"github.com/Bartosso/bms-to-ffbeast/internal/config"
)

// Sender 发送一行遥测数据，尽力而为
type Sender interface {
	Send(payload []byte) error
}

// UDPSender 已连接到固定目标的 UDP socket
type UDPSender struct {
	conn *net.UDPConn
}

// Dial 绑定随机本地端口并连接到目标地址
// 失败视为配置错误，由调用方终止进程
func Dial(cfg config.TransportConfig) (*UDPSender, error) {
	raddr, err := net.ResolveUDPAddr("udp", cfg.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve telemetry address %s: %w", cfg.Address(), err)
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telemetry socket %s: %w", raddr, err)
	}

	return &UDPSender{conn: conn}, nil
}

// Send 发送一个数据报，不重试
func (s *UDPSender) Send(payload []byte) error {
	_, err := s.conn.Write(payload)
	return err
}

// LocalAddr 本地绑定地址
func (s *UDPSender) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// RemoteAddr 目标地址
func (s *UDPSender) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Close 关闭 socket
func (s *UDPSender) Close() error {
	return s.conn.Close()
}
