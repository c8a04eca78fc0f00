package main

import (
	"context"
	"fmt"
	"time"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ninja0404/lobsterpad/internal/httpx"
	"github.com/ninja0404/lobsterpad/pkg/config"
	"github.com/ninja0404/lobsterpad/pkg/constants"
	"github.com/ninja0404/lobsterpad/pkg/ipfs"
	"github.com/ninja0404/lobsterpad/pkg/jito"
	"github.com/ninja0404/lobsterpad/pkg/launch"
	"github.com/ninja0404/lobsterpad/pkg/moralis"
	"github.com/ninja0404/lobsterpad/pkg/pumpportal"
	"github.com/ninja0404/lobsterpad/pkg/rpc"
	"github.com/ninja0404/lobsterpad/pkg/sender"
	"github.com/ninja0404/lobsterpad/pkg/store"
	"github.com/ninja0404/lobsterpad/pkg/store/postgres"
	"github.com/ninja0404/lobsterpad/pkg/vamp"
	"github.com/ninja0404/lobsterpad/pkg/wallet"
)

// runtimeDeps holds the clients a command needs. Build it once per command.
type runtimeDeps struct {
	cfg     config.Config
	log     zerolog.Logger
	rpc     *rpc.Client
	sender  *sender.Sender
	history store.HistoryStore
	wallets store.WalletStore
	keyring *wallet.Keyring
	closers []func()
}

func newRuntime(cmd *cobra.Command, opts *globalOpts) (*runtimeDeps, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	log := cfg.RPC.Logger

	client := rpc.NewClient(cfg.RPC)
	s := newSender(cfg, client, log)

	deps := &runtimeDeps{cfg: cfg, log: log, rpc: client, sender: s}
	if err := deps.openStores(cmd.Context()); err != nil {
		deps.close()
		return nil, err
	}
	return deps, nil
}

func newSender(cfg config.Config, client *rpc.Client, log zerolog.Logger) *sender.Sender {
	s := sender.New(client, solanarpc.CommitmentType(cfg.RPC.Commitment)).WithLogger(log)
	if cfg.JitoURL != "" {
		tip := uint64(cfg.JitoTipSOL * constants.LamportsPerSOL)
		s.WithJito(jito.NewClient(cfg.JitoURL, cfg.JitoUUID).WithTip(tip))
	}
	return s
}

// openStores picks the history and wallet backends. Without configuration
// everything stays in memory for this process only.
func (d *runtimeDeps) openStores(ctx context.Context) error {
	mem := store.NewMemory()
	d.history, d.wallets = mem, mem

	if d.cfg.StorePath != "" {
		f, err := store.NewFile(d.cfg.StorePath)
		if err != nil {
			return err
		}
		d.history, d.wallets = f, f
	}

	if d.cfg.HistoryDSN != "" {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := postgres.NewPool(ctx, d.cfg.HistoryDSN)
		if err != nil {
			return err
		}
		d.closers = append(d.closers, pool.Close)
		if err := pool.Migrate(ctx); err != nil {
			return err
		}
		d.history = postgres.NewHistoryStore(pool)
	}

	saved, err := d.wallets.LoadWallets(ctx)
	if err != nil {
		return fmt.Errorf("load wallets: %w", err)
	}
	d.keyring = wallet.NewKeyring(saved...)
	return nil
}

func (d *runtimeDeps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func (d *runtimeDeps) saveWallets(ctx context.Context) error {
	return d.wallets.SaveWallets(ctx, d.keyring.List())
}

func (d *runtimeDeps) newLauncher() *launch.Launcher {
	hc := httpx.NewClient(d.cfg.Endpoints.HTTPTimeout)
	return &launch.Launcher{
		Uploader:  ipfs.NewClient(d.cfg.Endpoints.IPFSURL, ipfs.WithHTTPClient(hc), ipfs.WithLogger(d.log)),
		Requester: d.newPumpPortal(),
		Submitter: d.sender,
		SubmitterFor: func(rpcURL string) (launch.Submitter, error) {
			cfg := d.cfg
			cfg.RPC.RPCURL = rpcURL
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return newSender(cfg, rpc.NewClient(cfg.RPC), d.log), nil
		},
		Mints: launch.VanityMints{
			Workers: d.cfg.Launch.VanityWorkers,
			Timeout: d.cfg.Launch.VanityTimeout,
			Log:     d.log,
		},
		History:     d.history,
		Defaults:    d.cfg.Launch,
		ExplorerURL: d.cfg.Endpoints.ExplorerTxURL,
		Log:         d.log,
	}
}

func (d *runtimeDeps) newPumpPortal() *pumpportal.Client {
	return pumpportal.NewClient(d.cfg.Endpoints.PumpPortalURL,
		pumpportal.WithHTTPClient(httpx.NewClient(d.cfg.Endpoints.HTTPTimeout)),
		pumpportal.WithLogger(d.log))
}

func (d *runtimeDeps) newCloner() *vamp.Cloner {
	hc := httpx.NewClient(d.cfg.Endpoints.HTTPTimeout)
	source := moralis.NewClient(d.cfg.Endpoints.MoralisURL, d.cfg.MoralisAPIKey,
		moralis.WithHTTPClient(hc), moralis.WithLogger(d.log))
	return vamp.NewCloner(source,
		vamp.WithHTTPClient(hc),
		vamp.WithGateway(d.cfg.Endpoints.IPFSGatewayURL),
		vamp.WithImageProxy(d.cfg.Endpoints.ImageProxyURL),
		vamp.WithLogger(d.log))
}
