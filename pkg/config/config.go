// Package config loads connection settings from ini files, so tools
// can share one description of the bus and the motors behind it.
package config

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"

	motorcan "github.com/openbotics/gomotorcan"
)

type BusConfig struct {
	Interface string `ini:"interface"`
	Channel   string `ini:"channel"`
	Bitrate   int    `ini:"bitrate"`
}

type ConnectionConfig struct {
	SendQueueSize     int `ini:"send_queue_size"`
	BroadcastCapacity int `ini:"broadcast_capacity"`
	ListenerQueueSize int `ini:"listener_queue_size"`
	PollTimeoutMs     int `ini:"poll_timeout_ms"`
}

// MotorsConfig lists the node ids expected on the bus, per family
type MotorsConfig struct {
	ODrive     []uint `ini:"odrive"`
	MyActuator []uint `ini:"myactuator"`
	X424       []uint `ini:"x424"`
}

type Config struct {
	Bus        BusConfig        `ini:"bus"`
	Connection ConnectionConfig `ini:"connection"`
	Motors     MotorsConfig     `ini:"motors"`
}

// Default returns a configuration matching the Connection defaults on a
// local socketcan channel
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Interface: "socketcan",
			Channel:   "can0",
			Bitrate:   motorcan.DefaultBitrate,
		},
		Connection: ConnectionConfig{
			SendQueueSize:     motorcan.DefaultSendQueueSize,
			BroadcastCapacity: motorcan.DefaultBroadcastCapacity,
			ListenerQueueSize: motorcan.DefaultListenerQueueSize,
			PollTimeoutMs:     int(motorcan.DefaultPollTimeout / time.Millisecond),
		},
	}
}

// Load reads an ini file on top of the defaults
func Load(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v : %w", path, err)
	}
	config := Default()
	if err := file.MapTo(config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v : %w", path, err)
	}
	return config, nil
}

// ConnectionOptions converts the configuration into Connection options
func (c *Config) ConnectionOptions() []motorcan.Option {
	opts := []motorcan.Option{}
	if c.Connection.SendQueueSize > 0 {
		opts = append(opts, motorcan.WithSendQueueSize(c.Connection.SendQueueSize))
	}
	if c.Connection.BroadcastCapacity > 0 {
		opts = append(opts, motorcan.WithBroadcastCapacity(c.Connection.BroadcastCapacity))
	}
	if c.Connection.ListenerQueueSize > 0 {
		opts = append(opts, motorcan.WithListenerQueueSize(c.Connection.ListenerQueueSize))
	}
	if c.Connection.PollTimeoutMs > 0 {
		opts = append(opts, motorcan.WithPollTimeout(time.Duration(c.Connection.PollTimeoutMs)*time.Millisecond))
	}
	if c.Bus.Bitrate > 0 {
		opts = append(opts, motorcan.WithBitrate(c.Bus.Bitrate))
	}
	return opts
}

// Open connects to the configured bus
func (c *Config) Open() (*motorcan.Connection, error) {
	return motorcan.Open(c.Bus.Interface, c.Bus.Channel, c.ConnectionOptions()...)
}
