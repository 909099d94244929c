package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"badgectl/buzzer"
	"badgectl/clock"
	"badgectl/door"
	"badgectl/feedback"
	"badgectl/indicator"
	"badgectl/metrics"
	"badgectl/mqtt"
	"badgectl/reader"
	"badgectl/session"
	"badgectl/transport"
)

var myBuild string

// Outputs are the local feedback devices.
type Outputs struct {
	Indicator indicator.Indicator
	Buzzer    buzzer.Buzzer
	Strike    door.Strike
}

// App holds the application state and dependencies.
type App struct {
	cfg      *Config
	out      Outputs
	scanner  reader.Scanner
	link     transport.Line
	renderer *feedback.Renderer
	ctl      *session.Controller
	mqtt     *mqtt.Client
	metrics  *metrics.Metrics
}

func main() {
	fmt.Printf("badgectl build %s\n", myBuild)

	selftest := flag.Bool("selftest", false, "Run the output self test and exit")
	cfgfile := flag.String("cfg", "badgectl.cfg", "Config file")
	flag.Parse()

	cfg, err := loadConfigFile(*cfgfile)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	var out Outputs
	out.Indicator, err = indicator.New(cfg.Indicator)
	if err != nil {
		log.Fatalf("Init indicator: %v", err)
	}
	out.Indicator.ConnectionLost() // until the host link is up

	out.Buzzer, err = buzzer.New(cfg.Buzzer)
	if err != nil {
		log.Fatalf("Init buzzer: %v", err)
	}

	out.Strike, err = door.New(cfg.Door)
	if err != nil {
		log.Fatalf("Init door: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *selftest {
		app := &App{cfg: cfg, out: out, renderer: feedback.NewRenderer(out.Indicator, out.Buzzer, out.Strike, nil)}
		app.selfTest(ctx)
		app.release()
		return
	}

	scanner, err := reader.New(cfg.Reader)
	if err != nil {
		log.Fatalf("Init reader: %v", err)
	}

	link, err := transport.New(cfg.Link)
	if err != nil {
		log.Fatalf("Init host link: %v", err)
	}

	app, err := newApp(cfg, out, scanner, link, clock.Real{})
	if err != nil {
		log.Fatalf("Init: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("Shutting down...")
		cancel()
	}()

	app.run(ctx)
	app.release()

	fmt.Println("Shutdown complete")
}

// newApp wires the controller and telemetry around already opened devices.
func newApp(cfg *Config, out Outputs, scanner reader.Scanner, link transport.Line, clk clock.Clock) (*App, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		out:      out,
		scanner:  scanner,
		link:     link,
		renderer: feedback.NewRenderer(out.Indicator, out.Buzzer, out.Strike, clk),
	}

	app.mqtt, err = mqtt.New(cfg.MQTT, cfg.ClientID, mqtt.Handlers{
		OnConnect:    func() { log.Printf("Telemetry connected as %s", cfg.ClientID) },
		OnDisconnect: func() { log.Printf("Telemetry disconnected") },
	})
	if err != nil {
		return nil, fmt.Errorf("init MQTT: %w", err)
	}

	app.ctl = session.New(cfg.Session, scanner, link, app.renderer,
		session.WithClock(clk),
		session.WithTable(table),
		session.WithHooks(session.Hooks{OnComplete: app.onSession}),
	)
	app.metrics = metrics.New(app.ctl.State)
	return app, nil
}

// run blocks until ctx is done.
func (app *App) run(ctx context.Context) {
	go func() {
		if err := app.mqtt.Connect(); err != nil {
			log.Printf("MQTT connect: %v", err)
		}
	}()
	go app.pingSender(ctx)
	go func() {
		if err := app.metrics.Serve(ctx, app.cfg.Metrics); err != nil {
			log.Printf("Metrics: %v", err)
		}
	}()

	if app.cfg.SelfTestEnabled() {
		app.selfTest(ctx)
	}
	app.sendBanner()

	if err := app.ctl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Controller stopped: %v", err)
	}
}

func (app *App) onSession(s *session.Session) {
	app.metrics.Observe(s)
	app.mqtt.PublishSession(s)
}

func (app *App) sendBanner() {
	for _, line := range app.cfg.Link.Banner {
		if err := app.link.SendLine(line); err != nil {
			log.Printf("Send banner: %v", err)
			app.renderer.ConnectionLost()
			return
		}
	}
}

// selfTest plays every self test pattern so an installer can check the
// outputs, then leaves the indicator idle.
func (app *App) selfTest(ctx context.Context) {
	log.Printf("Running self test")
	for _, fb := range feedback.SelfTest {
		if err := app.renderer.Render(ctx, fb, app.cfg.ClientID); err != nil {
			return
		}
	}
	app.renderer.Idle()
}

func (app *App) pingSender(ctx context.Context) {
	if !app.mqtt.IsEnabled() {
		return
	}
	ticker := time.NewTicker(app.mqtt.PingInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			app.mqtt.Ping(now)
		}
	}
}

func (app *App) release() {
	if app.mqtt != nil {
		app.mqtt.Disconnect()
	}
	if app.scanner != nil {
		if err := app.scanner.Close(); err != nil {
			log.Printf("Close reader: %v", err)
		}
	}
	if app.link != nil {
		if err := app.link.Close(); err != nil {
			log.Printf("Close host link: %v", err)
		}
	}
	if err := app.out.Strike.Release(); err != nil {
		log.Printf("Release door: %v", err)
	}
	if err := app.out.Buzzer.Release(); err != nil {
		log.Printf("Release buzzer: %v", err)
	}
	app.out.Indicator.Shutdown()
	if err := app.out.Indicator.Release(); err != nil {
		log.Printf("Release indicator: %v", err)
	}
}
