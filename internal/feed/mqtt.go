package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/geohunt/arcoin/internal/dispatcher"
)

// MQTTConfig configures the live MQTT sensor feed.
type MQTTConfig struct {
	Broker   string
	ClientID string
	GPSTopic string
	IMUTopic string
}

// gpsMessage is the JSON payload expected on the GPS topic.
type gpsMessage struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Accuracy  float64 `json:"accuracy"`
}

// imuMessage is the JSON payload expected on the IMU topic.
type imuMessage struct {
	CompassEnabled   bool       `json:"compassEnabled"`
	CompassDegrees   float64    `json:"compassDegrees"`
	Acceleration     [3]float64 `json:"acceleration"`
	GyroAvailable    bool       `json:"gyroAvailable"`
	GyroAttitude     [4]float64 `json:"gyroAttitude"`
	CameraYawDegrees float64    `json:"cameraYawDegrees"`
}

// MQTTFeed subscribes to GPS and IMU topics on a broker and forwards each
// sample as an observer update command.
type MQTTFeed struct {
	cfg  MQTTConfig
	sink Sink
	log  *slog.Logger
}

// NewMQTT creates an MQTT sensor feed.
func NewMQTT(cfg MQTTConfig, sink Sink, log *slog.Logger) *MQTTFeed {
	if log == nil {
		log = slog.Default()
	}
	return &MQTTFeed{cfg: cfg, sink: sink, log: log}
}

// Run connects to the broker and forwards samples until the context is
// cancelled.
func (f *MQTTFeed) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(f.cfg.Broker).
		SetClientID(f.cfg.ClientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connecting to mqtt broker %s: %w", f.cfg.Broker, token.Error())
	}
	defer client.Disconnect(250)
	f.log.Info("connected to mqtt broker", "broker", f.cfg.Broker)

	if token := client.Subscribe(f.cfg.GPSTopic, 0, f.handleGPS); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribing to %s: %w", f.cfg.GPSTopic, token.Error())
	}
	if token := client.Subscribe(f.cfg.IMUTopic, 0, f.handleIMU); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribing to %s: %w", f.cfg.IMUTopic, token.Error())
	}
	f.log.Info("subscribed to sensor topics", "gps", f.cfg.GPSTopic, "imu", f.cfg.IMUTopic)

	<-ctx.Done()
	return nil
}

func (f *MQTTFeed) handleGPS(_ mqtt.Client, msg mqtt.Message) {
	var m gpsMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		f.log.Error("bad gps payload", "error", err)
		return
	}
	if _, err := f.sink.Dispatch(dispatcher.Command{
		Name:      "gpsFix",
		Args:      gpsArgs(m),
		Timestamp: time.Now(),
	}); err != nil {
		f.log.Error("failed to dispatch gps fix", "error", err)
	}
}

func (f *MQTTFeed) handleIMU(_ mqtt.Client, msg mqtt.Message) {
	var m imuMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		f.log.Error("bad imu payload", "error", err)
		return
	}
	if _, err := f.sink.Dispatch(dispatcher.Command{
		Name:      "sensorUpdate",
		Args:      imuArgs(m),
		Timestamp: time.Now(),
	}); err != nil {
		f.log.Error("failed to dispatch sensor update", "error", err)
	}
}

func gpsArgs(m gpsMessage) []string {
	return []string{
		formatFloat(m.Latitude),
		formatFloat(m.Longitude),
		formatFloat(m.Accuracy),
		"0",
	}
}

func imuArgs(m imuMessage) []string {
	return []string{
		formatBool(m.CompassEnabled),
		formatFloat(m.CompassDegrees),
		formatFloat(m.Acceleration[0]),
		formatFloat(m.Acceleration[1]),
		formatFloat(m.Acceleration[2]),
		formatBool(m.GyroAvailable),
		formatFloat(m.GyroAttitude[0]),
		formatFloat(m.GyroAttitude[1]),
		formatFloat(m.GyroAttitude[2]),
		formatFloat(m.GyroAttitude[3]),
		formatFloat(m.CameraYawDegrees),
	}
}
