// Command gvnc-dump connects to an RFB server, logs every event the
// client emits, and writes the framebuffer out as a PPM image when SIGINT
// or SIGTERM arrives (then shuts the connection down), and once more when
// the connection has ended, just before exiting.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jwendell/gvnc"
	"github.com/jwendell/gvnc/internal/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	host        string
	port        int
	password    string
	shared      bool
	outDir      string
	metricsAddr string
	tlsInsecure bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "gvnc-dump",
		Short: "Connect to an RFB server and dump framebuffer snapshots to PPM files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.host, "host", "localhost", "RFB server host")
	flags.IntVar(&opts.port, "port", 5900, "RFB server port")
	flags.StringVar(&opts.password, "password", "", "VNC password, if the server asks for one")
	flags.BoolVar(&opts.shared, "shared", true, "set the shared flag during ClientInit")
	flags.StringVar(&opts.outDir, "out", ".", "directory to write framebuffer.ppm snapshots into")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9109)")
	flags.BoolVar(&opts.tlsInsecure, "tls-insecure", true, "passed to the client as TLSConfig.Anonymous; the TLS and VeNCrypt auth branches override it with the negotiated sub-type, so it does not change the handshake")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	log := logrus.NewEntry(logrus.StandardLogger())
	reg := prometheus.NewRegistry()

	clientOpts := []gvnc.ClientOption{
		gvnc.WithLogger(log),
		gvnc.WithMetricsRegisterer(reg),
		gvnc.WithShared(opts.shared),
		gvnc.WithTLSConfig(transportTLSConfig(opts)),
		gvnc.WithOnConnected(func() {
			log.Info("connected")
		}),
		gvnc.WithOnInitialized(func(w, h int, name string) {
			log.WithFields(logrus.Fields{"width": w, "height": h, "name": name}).Info("initialized")
		}),
		gvnc.WithOnDisconnected(func(err error) {
			log.WithError(err).Info("disconnected")
		}),
		gvnc.WithOnAuthCredential(func(kinds []gvnc.CredentialKind) error {
			return nil
		}),
		gvnc.WithOnAuthFailure(func(reason string) {
			log.WithField("reason", reason).Warn("authentication failed")
		}),
		gvnc.WithOnBell(func() {
			log.Info("bell")
		}),
		gvnc.WithOnServerCutText(func(text []byte) {
			log.WithField("bytes", len(text)).Info("server cut text")
		}),
		gvnc.WithOnDesktopResize(func(w, h int) {
			log.WithFields(logrus.Fields{"width": w, "height": h}).Info("desktop resized")
		}),
	}

	c := gvnc.NewClient(opts.host, opts.port, clientOpts...)
	if opts.password != "" {
		c.SetCredential(gvnc.CredentialPassword, opts.password)
	}

	if err := c.Open(ctx); err != nil {
		return fmt.Errorf("gvnc-dump: %w", err)
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(waitCtx)

	if opts.metricsAddr != "" {
		srv := &http.Server{Addr: opts.metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		g.Go(func() error {
			log.WithField("addr", opts.metricsAddr).Info("serving metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return srv.Close()
		})
	}

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			log.Info("interrupt received, dumping framebuffer and shutting down")
			dumpFramebuffer(log, c, opts.outDir)
			c.Shutdown()
		case <-gctx.Done():
		}
		return nil
	})

	c.Wait()
	dumpFramebuffer(log, c, opts.outDir)
	if err := c.LastError(); err != nil {
		log.WithError(err).Warn("connection ended with an error")
	}
	cancel()
	_ = g.Wait()
	return nil
}

func transportTLSConfig(opts *options) transport.TLSConfig {
	return transport.TLSConfig{Anonymous: opts.tlsInsecure}
}

func dumpFramebuffer(log *logrus.Entry, c *gvnc.Client, outDir string) {
	fb := c.Framebuffer()
	if fb == nil {
		return
	}
	path := fmt.Sprintf("%s/framebuffer.ppm", outDir)
	if err := writePPM(path, fb); err != nil {
		log.WithError(err).Warn("writing framebuffer snapshot failed")
		return
	}
	log.WithField("path", path).Info("wrote framebuffer snapshot")
}
