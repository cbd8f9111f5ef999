package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
	"github.com/shestakovda/fdbscan"
	"github.com/shestakovda/fdbscan/amqprpc"
	"github.com/shestakovda/fdbscan/config"
	"github.com/shestakovda/fdbscan/db"
	"github.com/shestakovda/fdbscan/rpc"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scan executor over the configured transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if cfg.MetricsAddr != "" {
				go metrics(cfg.MetricsAddr)
			}

			class := e.class()

			switch cfg.Transport {
			case config.TransportFDB:
				if err = e.connect(); err != nil {
					return err
				}

				srv := rpc.NewServer(e.cn, class.Name())

				for method, hdl := range class.Methods() {
					if err = srv.Endpoint(method, hdl); err != nil {
						return err
					}
				}

				srv.Run(ctx)
				defer srv.Stop()
			case config.TransportAMQP:
				if err = e.broker(); err != nil {
					return err
				}

				srv := amqprpc.NewServer(e.amqp, class.Name())

				for method, hdl := range class.Methods() {
					if err = srv.Endpoint(method, hdl); err != nil {
						return err
					}
				}

				if err = srv.Run(ctx); err != nil {
					return err
				}
				defer srv.Stop()
			default:
				return errors.New("direct transport runs in the client process, nothing to serve")
			}

			pterm.Info.Printfln("class %s serves pool %s over %s", class.Name(), cfg.DataPool, cfg.Transport)
			<-ctx.Done()
			return nil
		},
	}
}

func metrics(addr string) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(fdbscan.Metrics...)
	reg.MustRegister(db.Metrics...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		glog.Errorf("%+v", err)
	}
}
