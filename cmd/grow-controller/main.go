// Command grow-controller runs a grow chamber: day/night lighting, humidity
// driven misting, scheduled ventilation and sensor logging.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/grow-controller/internal/config"
	"github.com/sweeney/grow-controller/internal/datalog"
	"github.com/sweeney/grow-controller/internal/gpio"
	"github.com/sweeney/grow-controller/internal/logger"
	"github.com/sweeney/grow-controller/internal/logic"
	"github.com/sweeney/grow-controller/internal/metrics"
	"github.com/sweeney/grow-controller/internal/mqtt"
	"github.com/sweeney/grow-controller/internal/notify"
	"github.com/sweeney/grow-controller/internal/sensor"
	"github.com/sweeney/grow-controller/internal/status"
	"github.com/sweeney/grow-controller/internal/web"
)

var (
	configFile string
	envFile    string
	debug      bool
	printState bool

	v = config.New()

	rootCmd = &cobra.Command{
		Use:          "grow-controller",
		Short:        "Grow chamber environmental controller",
		SilenceUsage: true,
		RunE:         runRoot,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return config.Dump(v, cmd.OutOrStdout())
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Environment file loaded before the configuration (default .env, if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug messages")
	rootCmd.Flags().BoolVar(&printState, "print-state", false, "Print output states and one sensor reading, then exit")
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	if err := loadEnv(envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := readConfig(v, configFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if debug {
		v.Set("log.level", logger.DebugLevel)
	}
}

// loadEnv loads path into the environment. Without a path, .env is loaded
// when it exists.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// readConfig reads an explicit config file, or searches the default
// locations. Only an explicit file is required to exist.
func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("/etc/grow-controller/")
		v.AddConfigPath("$HOME/.grow-controller")
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func runRoot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	if printState {
		return runPrintState(cmd.OutOrStdout(), cfg)
	}

	if f := v.ConfigFileUsed(); f != "" {
		log.Infow("Using config file", "path", f)
	}
	if err := run(cmd.Context(), cfg, log, cmd.OutOrStdout()); err != nil {
		log.Fatalw("Grow controller stopped", "error", err)
	}
	return nil
}

// run drives the chamber until a signal arrives. Operator console lines go
// to out.
func run(ctx context.Context, cfg config.Config, log *logger.Logger, out io.Writer) error {
	console := notify.NewConsole(out, time.Now)
	if err := console.Notify("Start program execution"); err != nil {
		log.Warnw("Console write failed", "error", err)
	}

	sched, err := cfg.BuildSchedule()
	if err != nil {
		return err
	}
	pins, err := cfg.Pins()
	if err != nil {
		return err
	}

	w, err := gpio.NewRealWriter(cfg.GPIO.Chip, pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer w.Close()

	bank := gpio.NewBank(w, gpio.DefaultLayout())
	if err := bank.Init(); err != nil {
		return fmt.Errorf("init outputs: %w", err)
	}

	s, err := openSensor(cfg.Sensor)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer s.Close()

	initial, err := sensor.Read(s)
	if err != nil {
		return fmt.Errorf("initial sensor read: %w", err)
	}

	file, err := datalog.OpenFile(cfg.Datalog.Path)
	if err != nil {
		return err
	}
	sinks := datalog.NewMulti(file, log)
	defer sinks.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	sinks.OnSecondaryError = m.SinkError

	var history *datalog.SQLite
	if cfg.SQLite.Path != "" {
		db, err := datalog.InitDB(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		history = datalog.NewSQLite(db)
		sinks.Add("sqlite", secondary("sqlite", history, log, m))
		log.Infow("SQLite history enabled", "path", cfg.SQLite.Path)
	}
	if cfg.Influx.URL != "" {
		addInflux(ctx, sinks, cfg.Influx, log, m)
	}

	var (
		pub        mqtt.Publisher
		mqttStatus mqtt.ConnectionStatus
	)
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, log)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		q := mqtt.NewQueued(p, mqtt.QueueSize, log, func(err error) { m.SinkError("mqtt", err) })
		defer q.Close()
		pub, mqttStatus = q, q
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:            cfg.Loop.Poll.Milliseconds(),
		Strategy:          sched.Strategy.String(),
		HeartbeatMs:       cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:            cfg.MQTT.Broker,
		HTTPAddr:          cfg.HTTP.Addr,
		SensorDriver:      cfg.Sensor.Driver,
		LightOn:           sched.LightOn.String(),
		LightOff:          sched.LightOff.String(),
		HumidityThreshold: sched.HumidityThreshold,
	})
	network := networkReader(piHelperEnv)
	if n := network(); n != nil {
		tracker.SetNetwork(n)
	}

	r := &runner{
		ctrl:       logic.NewController(sched, sensor.NewSampler(s, sched.SampleCount)),
		bank:       bank,
		sink:       sinks,
		console:    console,
		tracker:    tracker,
		metrics:    m,
		log:        log,
		pub:        pub,
		mqttStatus: mqttStatus,
		heartbeat:  cfg.MQTT.Heartbeat,
		network:    network,
		now:        time.Now,
	}

	log.Infow("Starting grow controller",
		"strategy", sched.Strategy, "poll", cfg.Loop.Poll,
		"lights_on", sched.LightOn, "lights_off", sched.LightOff,
		"temperature", initial.Temperature, "humidity", initial.Humidity)

	if err := r.start(ctx, initial); err != nil {
		return r.stop("ERROR", err)
	}

	var tick <-chan time.Time
	if cfg.Loop.Poll > 0 {
		ticker := time.NewTicker(cfg.Loop.Poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	done := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		return r.runLoop(gctx, tick, sig)
	})

	if cfg.HTTP.Addr != "" {
		var h web.History
		if history != nil {
			h = history
		}
		srv := web.New(cfg.HTTP.Addr, tracker, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), h)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("HTTP status server failed", "addr", cfg.HTTP.Addr, "error", err)
			}
			return nil
		})
		g.Go(func() error {
			<-done
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
		log.Infow("HTTP status server listening", "addr", cfg.HTTP.Addr)
	}

	return g.Wait()
}

// addInflux registers the InfluxDB sink. An unreachable server is logged
// and skipped.
func addInflux(ctx context.Context, sinks *datalog.Multi, c config.InfluxConfig, log *logger.Logger, m *metrics.Metrics) {
	hctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	in, err := datalog.NewInflux(hctx, datalog.InfluxConfig{
		URL:    c.URL,
		Token:  c.Token,
		Org:    c.Org,
		Bucket: c.Bucket,
		Host:   c.Host,
	})
	if err != nil {
		log.Warnw("InfluxDB unavailable, continuing without it", "url", c.URL, "error", err)
		return
	}
	sinks.Add("influx", secondary("influx", in, log, m))
	log.Infow("InfluxDB enabled", "url", c.URL, "bucket", c.Bucket)
}

// secondary wraps a network or database sink so the control loop never
// waits on it.
func secondary(name string, s datalog.Sink, log *logger.Logger, m *metrics.Metrics) datalog.Sink {
	return datalog.NewAsync(name, s, datalog.DefaultQueueSize, datalog.DefaultWriteTimeout, log, m.SinkError)
}

func openSensor(c config.SensorConfig) (sensor.Sensor, error) {
	switch c.Driver {
	case config.DriverDHT22:
		d, err := sensor.NewDHT(c.DHTPin, c.DHTRetries)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		s, err := sensor.NewSHT31(c.I2CBus, uint8(c.I2CAddr))
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// runPrintState reads the outputs without changing them, takes one sensor
// reading and prints both.
func runPrintState(out io.Writer, cfg config.Config) error {
	pins, err := cfg.Pins()
	if err != nil {
		return err
	}
	w, err := gpio.NewRealMonitor(cfg.GPIO.Chip, pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer w.Close()

	s, err := openSensor(cfg.Sensor)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer s.Close()

	return printStates(out, gpio.NewBank(w, gpio.DefaultLayout()), s)
}

func printStates(out io.Writer, bank *gpio.Bank, s sensor.Sensor) error {
	lights := outputState(bank, logic.ActuatorLights)
	fan := outputState(bank, logic.ActuatorFan)
	mister := outputState(bank, logic.ActuatorMister)
	fmt.Fprintf(out, "Lights: %s, Fan: %s, Mister: %s\n", lights, fan, mister)

	r, err := sensor.Read(s)
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	fmt.Fprintf(out, "Temperature: %0.1f C, Humidity: %0.1f %%\n", r.Temperature, r.Humidity)
	return nil
}

func outputState(bank *gpio.Bank, act logic.Actuator) string {
	on, err := bank.State(act)
	if err != nil {
		return "UNKNOWN"
	}
	return stateString(on)
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
