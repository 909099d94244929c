// Package mqtt publishes reader telemetry to an MQTT broker. It is optional:
// with no host configured every call is a no-op.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"badgectl/session"
)

// Config holds MQTT connection settings.
type Config struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	CACert     string `yaml:"ca_cert"`
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`

	// PingSeconds is the status ping period. Zero means 120.
	PingSeconds int `yaml:"ping_seconds"`
}

// Handlers holds callbacks for broker connection events.
type Handlers struct {
	OnConnect    func()
	OnDisconnect func()
}

// Client wraps the paho client with the reader's topics.
type Client struct {
	client       paho.Client
	clientID     string
	enabled      bool
	ping         time.Duration
	onConnect    func()
	onDisconnect func()
}

// New creates a client. It returns a disabled client if host is empty.
func New(cfg Config, clientID string, handlers Handlers) (*Client, error) {
	c := &Client{
		clientID:     clientID,
		ping:         120 * time.Second,
		onConnect:    handlers.OnConnect,
		onDisconnect: handlers.OnDisconnect,
	}
	if cfg.PingSeconds > 0 {
		c.ping = time.Duration(cfg.PingSeconds) * time.Second
	}

	if cfg.Host == "" {
		log.Println("MQTT disabled (no host configured)")
		return c, nil
	}
	c.enabled = true

	var broker string
	var tlsConfig *tls.Config

	if cfg.CACert != "" || cfg.ClientCert != "" {
		if cfg.Port == 0 {
			cfg.Port = 8883
		}
		broker = fmt.Sprintf("ssl://%s:%d", cfg.Host, cfg.Port)

		var err error
		tlsConfig, err = buildTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("build TLS config: %w", err)
		}
	} else {
		if cfg.Port == 0 {
			cfg.Port = 1883
		}
		broker = fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)
		log.Println("MQTT using non-TLS connection")
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(60 * time.Second).
		SetConnectionLostHandler(c.handleConnectionLost).
		SetOnConnectHandler(c.handleConnect)

	if tlsConfig != nil {
		opts.SetTLSConfig(tlsConfig)
	}

	c.client = paho.NewClient(opts)

	paho.ERROR = log.New(os.Stdout, "[MQTT ERROR] ", 0)
	paho.CRITICAL = log.New(os.Stdout, "[MQTT CRIT] ", 0)
	paho.WARN = log.New(os.Stdout, "[MQTT WARN] ", 0)

	return c, nil
}

func buildTLSConfig(cfg Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates in %s", cfg.CACert)
		}
		tlsConfig.RootCAs = caPool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Connect connects to the broker. If disabled, it calls OnConnect at once.
func (c *Client) Connect() error {
	if !c.enabled {
		if c.onConnect != nil {
			c.onConnect()
		}
		return nil
	}

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect: %w", token.Error())
	}
	log.Println("MQTT connected")
	return nil
}

// Disconnect disconnects from the broker. No-op if disabled.
func (c *Client) Disconnect() {
	if !c.enabled || c.client == nil {
		return
	}
	c.client.Disconnect(250)
}

// Publish publishes payload to topic. No-op if disabled.
func (c *Client) Publish(topic string, payload []byte) {
	if !c.enabled {
		return
	}
	c.client.Publish(topic, 0, false, payload)
}

// IsEnabled returns whether MQTT is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// PingInterval is how often the status ping should be sent.
func (c *Client) PingInterval() time.Duration {
	return c.ping
}

// Topic returns the status topic for leaf under this node.
func (c *Client) Topic(leaf string) string {
	return fmt.Sprintf("badgectl/status/node/%s/%s", c.clientID, leaf)
}

// SessionEvent is the JSON body published for each completed session.
type SessionEvent struct {
	ID         string `json:"id"`
	Credential string `json:"credential"`
	Start      string `json:"start"`
	Received   bool   `json:"received"`
	Response   string `json:"response,omitempty"`
	Code       string `json:"code"`
	WaitedMS   int64  `json:"waited_ms"`
	LinkError  string `json:"link_error,omitempty"`
}

// NewSessionEvent summarizes s for publication.
func NewSessionEvent(s *session.Session) SessionEvent {
	ev := SessionEvent{
		ID:         s.ID.String(),
		Credential: s.Credential.String(),
		Start:      s.Start.UTC().Format(time.RFC3339Nano),
		Received:   s.ResponseReceived,
		Response:   s.Response,
		Code:       s.Code.String(),
		WaitedMS:   s.Waited.Milliseconds(),
	}
	if s.LinkErr != nil {
		ev.LinkError = s.LinkErr.Error()
	}
	return ev
}

// PublishSession reports a completed session.
func (c *Client) PublishSession(s *session.Session) {
	if !c.enabled {
		return
	}
	payload, err := json.Marshal(NewSessionEvent(s))
	if err != nil {
		log.Printf("Encode session event: %v", err)
		return
	}
	c.Publish(c.Topic("session"), payload)
}

// Ping publishes the periodic liveness message.
func (c *Client) Ping(now time.Time) {
	c.Publish(c.Topic("ping"), []byte(fmt.Sprintf(`{"time":%q}`, now.UTC().Format(time.RFC3339))))
}

func (c *Client) handleConnect(client paho.Client) {
	log.Println("MQTT connection established")
	if c.onConnect != nil {
		c.onConnect()
	}
}

func (c *Client) handleConnectionLost(client paho.Client, err error) {
	log.Printf("MQTT connection lost: %v", err)
	if c.onDisconnect != nil {
		c.onDisconnect()
	}
}
