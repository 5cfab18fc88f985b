// cmd/mockdevice/main.go
//
// Mock ESP32: simulates the irrigation controller without hardware. Publishes
// random-walk sensor readings, honors relay commands (manual ON/OFF or AUTO
// threshold control on soil moisture) and reports its status over MQTT.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const (
	topicTemperature  = "sensor/temperature"
	topicHumidity     = "sensor/humidity"
	topicSoilMoisture = "sensor/soil_moisture"
	topicRelayStatus  = "actuator/relay_status"
	topicRelayControl = "actuator/relay_control"
	topicStatus       = "sensor/status"

	// Auto-mode irrigation thresholds, same as the real firmware.
	soilMoistureLow  = 30
	soilMoistureHigh = 60
)

type device struct {
	mu           sync.Mutex
	temperature  float64
	humidity     float64
	soilMoisture int
	relayOn      bool
	autoMode     bool
	log          *logrus.Logger
}

func main() {
	broker := flag.String("broker", "localhost", "MQTT broker host")
	port := flag.Int("port", 1883, "MQTT broker port")
	sensorInterval := flag.Duration("interval", 5*time.Second, "Sensor publish interval")
	statusInterval := flag.Duration("status-interval", 30*time.Second, "Status publish interval")
	flag.Parse()

	log := logrus.New()

	dev := &device{
		temperature:  25.0,
		humidity:     60.0,
		soilMoisture: 45,
		autoMode:     true,
		log:          log,
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", *broker, *port)).
		SetClientID("ESP32_Mock_01").
		SetAutoReconnect(true).
		SetWill(topicStatus, "offline", 1, true)

	opts.SetOnConnectHandler(func(cli paho.Client) {
		log.Infof("connected to broker %s:%d", *broker, *port)
		if token := cli.Subscribe(topicRelayControl, 1, dev.onRelayControl); token.Wait() && token.Error() != nil {
			log.Fatalf("subscribing to %s: %v", topicRelayControl, token.Error())
		}
		publish(cli, topicStatus, "online")
		dev.publishRelayStatus(cli)
	})

	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("connecting to broker: %v", token.Error())
	}

	sensorTick := time.NewTicker(*sensorInterval)
	statusTick := time.NewTicker(*statusInterval)
	defer sensorTick.Stop()
	defer statusTick.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info("mock ESP32 started, publishing sensor data")
	for {
		select {
		case <-sensorTick.C:
			dev.step(cli)
		case <-statusTick.C:
			publish(cli, topicStatus, "online")
		case <-quit:
			publish(cli, topicStatus, "offline")
			cli.Disconnect(250)
			log.Info("mock ESP32 stopped")
			return
		}
	}
}

// step advances the simulation one tick and publishes all sensor readings.
func (d *device) step(cli paho.Client) {
	d.mu.Lock()

	d.temperature = clamp(d.temperature+(rand.Float64()-0.5)*1.0, 15, 35)
	d.humidity = clamp(d.humidity+(rand.Float64()-0.5)*2.0, 30, 90)

	// Irrigation raises soil moisture; otherwise it dries out.
	if d.relayOn {
		d.soilMoisture += 1 + rand.Intn(3)
	} else {
		d.soilMoisture -= rand.Intn(2)
	}
	if d.soilMoisture > 100 {
		d.soilMoisture = 100
	}
	if d.soilMoisture < 0 {
		d.soilMoisture = 0
	}

	relayChanged := false
	if d.autoMode {
		if d.soilMoisture < soilMoistureLow && !d.relayOn {
			d.relayOn = true
			relayChanged = true
			d.log.Info("auto mode: soil dry, relay ON")
		} else if d.soilMoisture > soilMoistureHigh && d.relayOn {
			d.relayOn = false
			relayChanged = true
			d.log.Info("auto mode: soil wet, relay OFF")
		}
	}

	temperature := d.temperature
	humidity := d.humidity
	soil := d.soilMoisture
	d.mu.Unlock()

	publish(cli, topicTemperature, fmt.Sprintf("%.2f", temperature))
	publish(cli, topicHumidity, fmt.Sprintf("%.2f", humidity))
	publish(cli, topicSoilMoisture, strconv.Itoa(soil))
	if relayChanged {
		d.publishRelayStatus(cli)
	}
}

// onRelayControl applies ON/OFF (switching to manual mode) or AUTO.
func (d *device) onRelayControl(cli paho.Client, msg paho.Message) {
	cmd := strings.ToUpper(strings.TrimSpace(string(msg.Payload())))
	d.log.Infof("relay command received: %s", cmd)

	d.mu.Lock()
	switch cmd {
	case "ON":
		d.relayOn = true
		d.autoMode = false
	case "OFF":
		d.relayOn = false
		d.autoMode = false
	case "AUTO":
		d.autoMode = true
		d.mu.Unlock()
		return
	default:
		d.mu.Unlock()
		d.log.Warnf("ignoring unknown relay command %q", cmd)
		return
	}
	d.mu.Unlock()

	d.publishRelayStatus(cli)
}

func (d *device) publishRelayStatus(cli paho.Client) {
	d.mu.Lock()
	status := "OFF"
	if d.relayOn {
		status = "ON"
	}
	d.mu.Unlock()
	publish(cli, topicRelayStatus, status)
}

func publish(cli paho.Client, topic, payload string) {
	// Retained so the dashboard sees the latest reading immediately after a
	// restart, matching the firmware's publishes.
	token := cli.Publish(topic, 1, true, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		logrus.Warnf("publishing to %s: %v", topic, err)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
