package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	motorcan "github.com/openbotics/gomotorcan"
	"github.com/openbotics/gomotorcan/pkg/config"
	"github.com/openbotics/gomotorcan/pkg/myactuator"
	"github.com/openbotics/gomotorcan/pkg/odrive"
	"github.com/openbotics/gomotorcan/pkg/x424"

	// CAN bus drivers
	_ "github.com/openbotics/gomotorcan/pkg/can/socketcan"
	_ "github.com/openbotics/gomotorcan/pkg/can/socketcanraw"
	_ "github.com/openbotics/gomotorcan/pkg/can/virtual"
)

var (
	configPath   string
	canInterface string
	channel      string
	verbose      bool
	probeMax     uint
)

func main() {
	root := &cobra.Command{
		Use:          "motorscan",
		Short:        "Discover and exercise motor controllers on a CAN bus",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "ini configuration file")
	root.PersistentFlags().StringVarP(&canInterface, "interface", "i", "", "bus driver e.g. socketcan, virtualcan")
	root.PersistentFlags().StringVar(&channel, "channel", "", "bus channel e.g. can0 or localhost:18889")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	discover := &cobra.Command{
		Use:   "discover",
		Short: "Probe the bus for motors of every supported family",
		RunE:  runDiscover,
	}
	discover.Flags().UintVar(&probeMax, "max-id", 7, "highest V3 node id probed")
	root.AddCommand(discover)

	root.AddCommand(&cobra.Command{
		Use:   "exercise [v3|x424] [node]",
		Short: "Run a short motion sequence on one motor",
		Args:  cobra.ExactArgs(2),
		RunE:  runExercise,
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// step is one command of a motion sequence, with the settle time that
// follows it
type step struct {
	msg   motorcan.Message
	pause time.Duration
}

func openConnection() (*motorcan.Connection, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if canInterface != "" {
		cfg.Bus.Interface = canInterface
	}
	if channel != "" {
		cfg.Bus.Channel = channel
	}
	return cfg.Open()
}

func runDiscover(cmd *cobra.Command, args []string) error {
	conn, err := openConnection()
	if err != nil {
		return err
	}

	var mu sync.Mutex
	found := map[string][]uint32{}
	note := func(family string, node uint32) {
		mu.Lock()
		defer mu.Unlock()
		for _, known := range found[family] {
			if known == node {
				return
			}
		}
		found[family] = append(found[family], node)
		log.Infof("[DISCOVER] found %v motor with id %v", family, node)
	}

	if _, err := motorcan.Register(conn, func(m myactuator.MotorStatus1) {
		note("Controller V3", m.NodeID())
	}); err != nil {
		return err
	}
	if _, err := motorcan.Register(conn, func(m x424.QueryCANID) {
		note("X4-24", m.NodeID())
	}); err != nil {
		return err
	}
	// ODrives announce themselves with periodic heartbeats, no probing
	// needed
	if _, err := motorcan.Register(conn, func(m odrive.Heartbeat) {
		note("ODrive", m.NodeID())
	}); err != nil {
		return err
	}

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		if err := conn.Dispatch(); err != nil {
			log.Errorf("[DISCOVER] dispatch ended : %v", err)
		}
	}()

	log.Info("[DISCOVER] probing for X4-24 motors")
	if err := conn.Send(x424.QueryCANID{}); err != nil {
		return err
	}
	time.Sleep(500 * time.Millisecond)

	for node := uint32(1); node <= uint32(probeMax); node++ {
		log.Debugf("[DISCOVER] probing for V3 motor with id %v", node)
		if err := conn.Send(myactuator.MotorStatus1{Node: node}); err != nil {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}

	conn.Disconnect()
	<-dispatchDone

	mu.Lock()
	defer mu.Unlock()
	if len(found) == 0 {
		fmt.Println("no motors found")
		return nil
	}
	for family, nodes := range found {
		fmt.Printf("%v : %v\n", family, nodes)
	}
	return nil
}

func runExercise(cmd *cobra.Command, args []string) error {
	var node uint32
	if _, err := fmt.Sscanf(args[1], "%d", &node); err != nil {
		return fmt.Errorf("invalid node id %v : %w", args[1], err)
	}
	conn, err := openConnection()
	if err != nil {
		return err
	}
	switch args[0] {
	case "v3":
		return exerciseV3(conn, node)
	case "x424":
		return exerciseX424(conn, node)
	default:
		conn.Disconnect()
		return fmt.Errorf("unknown motor family %v", args[0])
	}
}

// exerciseV3 runs brake release, a position sweep and a speed sweep on
// a V3 controller, then shuts the motor down
func exerciseV3(conn *motorcan.Connection, node uint32) error {
	if _, err := motorcan.Register(conn, func(m myactuator.MotorStatus1) {
		log.Infof("[V3] status : temp %v°C, voltage %.1fV, error x%04x",
			m.Temperature, m.Voltage, m.ErrorState)
	}); err != nil {
		return err
	}
	if _, err := motorcan.Register(conn, func(m myactuator.MultiTurnAngle) {
		log.Infof("[V3] angle : %.2f°", m.Angle)
	}); err != nil {
		return err
	}
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		conn.Dispatch()
	}()

	log.Infof("[V3] exercising motor %v, position sweep 0 to 90 and back", node)
	steps := []step{
		{myactuator.BrakeRelease{Node: node}, 500 * time.Millisecond},
		{myactuator.PositionControl{Node: node, Position: 90, MaxSpeed: 500}, 3500 * time.Millisecond},
		{myactuator.MultiTurnAngle{Node: node}, 100 * time.Millisecond},
		{myactuator.PositionControl{Node: node, Position: 0, MaxSpeed: 500}, 3500 * time.Millisecond},
		{myactuator.SpeedControl{Node: node, Speed: 100}, 3500 * time.Millisecond},
		{myactuator.SpeedControl{Node: node}, 500 * time.Millisecond},
		{myactuator.SpeedControl{Node: node, Speed: -100}, 3500 * time.Millisecond},
		{myactuator.SpeedControl{Node: node}, 500 * time.Millisecond},
		{myactuator.Shutdown{Node: node}, 500 * time.Millisecond},
	}
	if err := runSteps(conn, steps); err != nil {
		return err
	}
	conn.Disconnect()
	<-dispatchDone
	return nil
}

// exerciseX424 switches the motor to question answer mode, sweeps the
// position and the speed and stops
func exerciseX424(conn *motorcan.Connection, node uint32) error {
	if _, err := motorcan.Register(conn, func(m x424.Reply1) {
		log.Infof("[X424] telemetry : pos %.3f, speed %.2f, current %.2fA, temp %.1f°C (%v)",
			m.Position, m.Speed, m.Current, m.MotorTemp, m.MotorError)
	}); err != nil {
		return err
	}
	if _, err := motorcan.Register(conn, func(m x424.Reply4) {
		log.Infof("[X424] config ack : code %v ok %v", m.ConfigCode, m.ConfigStatus)
	}); err != nil {
		return err
	}
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		conn.Dispatch()
	}()

	log.Infof("[X424] exercising motor %v, position sweep -90 to 90 and back", node)
	steps := []step{
		{x424.SetCommunicationMode{Node: node, Mode: x424.CommunicationModeQuestionAnswer}, 500 * time.Millisecond},
		{x424.ServoPositionControl{Node: node, Position: -90, Speed: 300, CurrentLimit: 5}, 2500 * time.Millisecond},
		{x424.ServoPositionControl{Node: node, Position: 90, Speed: 300, CurrentLimit: 5}, 2 * time.Second},
		{x424.ServoPositionControl{Node: node, Position: 0, Speed: 300, CurrentLimit: 5}, 2 * time.Second},
		{x424.ServoSpeedControl{Node: node, Speed: -100, CurrentLimit: 5}, 2 * time.Second},
		{x424.ServoSpeedControl{Node: node, CurrentLimit: 5}, 500 * time.Millisecond},
		{x424.ServoSpeedControl{Node: node, Speed: 100, CurrentLimit: 5}, 2 * time.Second},
		{x424.ServoSpeedControl{Node: node, CurrentLimit: 5}, 500 * time.Millisecond},
	}
	if err := runSteps(conn, steps); err != nil {
		return err
	}
	conn.Disconnect()
	<-dispatchDone
	return nil
}

func runSteps(conn *motorcan.Connection, steps []step) error {
	for _, step := range steps {
		if err := conn.Send(step.msg); err != nil {
			return err
		}
		time.Sleep(step.pause)
	}
	return nil
}
