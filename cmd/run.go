package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/benbjohnson/clock"
	"github.com/hoermto/unifi-energy/core"
	"github.com/hoermto/unifi-energy/registry"
	"github.com/hoermto/unifi-energy/server"
	"github.com/hoermto/unifi-energy/server/db"
	"github.com/hoermto/unifi-energy/util"
	"github.com/smallnest/chanx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func runRoot(cmd *cobra.Command, args []string) {
	conf, err := loadConfig(viper.GetViper())
	if err != nil {
		log.FATAL.Fatal(err)
	}

	util.LogLevel(conf.Log, conf.Levels)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf); err != nil {
		log.FATAL.Fatal(err)
	}
}

// run wires the service and blocks until ctx is cancelled
func run(ctx context.Context, conf Config) error {
	bus := EventBus.New()
	clk := clock.New()

	reg := registry.New(bus, clk)
	snap, err := registry.LoadFile(conf.Registry)
	if err != nil {
		return err
	}
	reg.Load(snap)

	gdb, err := db.New(conf.Database)
	if err != nil {
		return err
	}

	store, err := db.NewStore(gdb)
	if err != nil {
		return err
	}

	// publish channel fanned out to all value consumers
	ch := chanx.NewUnboundedChan[util.Param](context.Background(), 64)

	cache := util.NewCache()
	metrics := server.NewMetrics()
	socket := server.NewSocketHub(cache)

	consumers := []func(<-chan util.Param){cache.Run, store.Run, metrics.Run, socket.Run}

	var mqtt *server.MQTT
	if conf.MQTT != nil {
		mqtt = server.NewMQTT(*conf.MQTT, reg, bus)
		consumers = append(consumers, mqtt.Run)
	}

	flushed := fanOut(ch.Out, consumers...)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := core.NewHub(bus, clk)
	go hub.Run(hubCtx)

	discovery := core.NewDiscovery(reg, reg, store, hub, clk, conf.Discovery)
	discovery.Prepare(ch.In)

	if err := hub.Call(ctx, func() error {
		discovery.Start()
		return nil
	}); err != nil {
		stopHub()
		return err
	}

	httpd := server.NewHTTPd(conf.Network.Addr, server.Site{
		Hub:       hub,
		Discovery: discovery,
		Registry:  reg,
		Bus:       bus,
		Cache:     cache,
		Metrics:   metrics,
		Socket:    socket,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.INFO.Printf("listening at %s", conf.Network.Addr)
		if err := httpd.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	if mqtt != nil {
		g.Go(func() error {
			if err := mqtt.Connect(); err != nil {
				return fmt.Errorf("mqtt: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.INFO.Println("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpd.Shutdown(sctx); err != nil {
			log.ERROR.Printf("http shutdown: %v", err)
		}

		// final values are published before the loop stops
		err := hub.Call(sctx, func() error {
			discovery.Shutdown()
			stopHub()
			return nil
		})
		if err != nil {
			stopHub()
			return fmt.Errorf("shutdown: %w", err)
		}

		close(ch.In)

		select {
		case <-flushed:
		case <-sctx.Done():
			log.WARN.Println("timeout flushing final values")
		}

		if mqtt != nil {
			mqtt.Disconnect()
		}

		return nil
	})

	return g.Wait()
}

// fanOut distributes in to all consumers. The returned channel is closed once in
// is drained and every consumer has returned.
func fanOut(in <-chan util.Param, consumers ...func(<-chan util.Param)) <-chan struct{} {
	tee := new(util.Tee)

	var wg sync.WaitGroup
	for _, consume := range consumers {
		recv := tee.Attach()
		wg.Add(1)
		go func(consume func(<-chan util.Param)) {
			defer wg.Done()
			consume(recv)
		}(consume)
	}

	done := make(chan struct{})
	go func() {
		tee.Run(in)
		wg.Wait()
		close(done)
	}()

	return done
}
