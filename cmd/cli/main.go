// Command sg is a CLI client for the solidgen image-to-3D service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/solidgen/solidgen-go/internal/api"
	"github.com/solidgen/solidgen-go/internal/artifact"
	"github.com/solidgen/solidgen-go/internal/billing"
	"github.com/solidgen/solidgen-go/internal/config"
	"github.com/solidgen/solidgen-go/internal/model"
	"github.com/solidgen/solidgen-go/internal/poll"
	"github.com/solidgen/solidgen-go/internal/session"
	"github.com/solidgen/solidgen-go/internal/upload"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `sg CLI
Usage:
  sg [-base-url URL] <cmd> [args]

Commands:
  version
  ping
  signup     -email <email> -password <pw>        (saves token)
  login      -email <email> -password <pw>        (saves token)
  logout
  whoami
  new        -file <image> [-resolution N] [-seed N] [-decimation N] [-texture N] [-nowait]
  jobs
  job        -id <job id>
  watch      -id <job id>
  download   -id <job id> [-o <file>]
  buy        -credits N -provider stripe|crypto [-currency usdt]
`)
	os.Exit(2)
}

// app bundles the wired components shared by subcommands.
type app struct {
	cfg    *config.AppConfig
	client *api.Client
	store  session.Store
	log    *zap.Logger
}

// main loads configuration and dispatches subcommands.
func main() {
	_ = godotenv.Load()

	baseURL := flag.String("base-url", "", "backend base URL (overrides config)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}

	logger := newLogger(cfg.Environment)
	defer func() { _ = logger.Sync() }()

	a := &app{
		cfg:    cfg,
		client: api.New(cfg.API.BaseURL, cfg.API.Timeout, logger),
		store:  session.NewFileStore(""),
		log:    logger,
	}

	switch cmd {
	case "version":
		fmt.Printf("sg %s (%s)\n", version, buildDate)
	case "ping":
		a.cmdPing()
	case "signup":
		a.cmdAuth(args, a.client.Signup)
	case "login":
		a.cmdAuth(args, a.client.Login)
	case "logout":
		a.cmdLogout()
	case "whoami":
		a.cmdWhoami()
	case "new":
		a.cmdNew(args)
	case "jobs":
		a.cmdJobs()
	case "job":
		a.cmdJob(args)
	case "watch":
		a.cmdWatch(args)
	case "download":
		a.cmdDownload(args)
	case "buy":
		a.cmdBuy(args)
	default:
		usage()
	}
}

func newLogger(environment string) *zap.Logger {
	if environment == "development" {
		l, _ := zap.NewDevelopment()
		return l
	}
	l, _ := zap.NewProduction()
	return l
}

// shortCtx bounds one-shot requests.
func shortCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// token loads the stored session or aborts before any request is attempted.
func (a *app) token() string {
	tok, err := a.store.Get()
	if err != nil {
		fail(err)
	}
	return tok
}

func (a *app) cmdPing() {
	ctx, cancel := shortCtx()
	defer cancel()
	if err := a.client.Health(ctx); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

func (a *app) cmdAuth(args []string, op func(context.Context, string, string) (model.AuthResult, error)) {
	fs := flag.NewFlagSet("auth", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "need -email and -password")
		os.Exit(1)
	}

	ctx, cancel := shortCtx()
	defer cancel()

	res, err := op(ctx, *email, *password)
	if err != nil {
		fail(err)
	}
	if err := a.store.Set(res.AccessToken); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

func (a *app) cmdLogout() {
	if err := a.store.Clear(); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

func (a *app) cmdWhoami() {
	tok := a.token()
	ctx, cancel := shortCtx()
	defer cancel()

	me, err := a.client.Me(ctx, tok)
	if err != nil {
		fail(err)
	}
	printJSON(me)
}

func (a *app) cmdNew(args []string) {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	file := fs.String("file", "", "input image (png/jpg/jpeg/webp)")
	defaults := model.DefaultJobParams()
	resolution := fs.Int("resolution", defaults.Resolution, "output resolution (512|1024|1536)")
	seed := fs.Int("seed", defaults.Seed, "generation seed")
	decimation := fs.Int("decimation", defaults.DecimationTarget, "mesh decimation target")
	texture := fs.Int("texture", defaults.TextureSize, "texture size (1024|2048|4096)")
	nowait := fs.Bool("nowait", false, "print the receipt without watching the job")
	_ = fs.Parse(args)
	if *file == "" {
		fmt.Fprintln(os.Stderr, "need -file")
		os.Exit(1)
	}

	tok := a.token()
	data, err := os.ReadFile(*file)
	if err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flow := upload.NewFlow(a.client, upload.NewHTTPPutter(a.cfg.API.Timeout), a.log)
	receipt, err := flow.Run(ctx, tok, *file, data, model.JobParams{
		Resolution:       *resolution,
		Seed:             *seed,
		DecimationTarget: *decimation,
		TextureSize:      *texture,
	})
	if err != nil {
		fail(err)
	}
	printJSON(receipt)

	if *nowait {
		return
	}
	a.watch(ctx, tok, receipt.JobID)
}

func (a *app) cmdJobs() {
	tok := a.token()
	ctx, cancel := shortCtx()
	defer cancel()

	list, err := a.client.ListJobs(ctx, tok)
	if err != nil {
		fail(err)
	}
	printJSON(list.Jobs)
}

func (a *app) cmdJob(args []string) {
	fs := flag.NewFlagSet("job", flag.ExitOnError)
	id := fs.String("id", "", "job id")
	_ = fs.Parse(args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}

	tok := a.token()
	ctx, cancel := shortCtx()
	defer cancel()

	job, err := a.client.GetJob(ctx, tok, *id)
	if err != nil {
		fail(err)
	}
	printJSON(job)
}

func (a *app) cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	id := fs.String("id", "", "job id")
	_ = fs.Parse(args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}

	tok := a.token()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.watch(ctx, tok, *id)
}

// watch polls the job to a terminal state, printing each status change.
func (a *app) watch(ctx context.Context, token, jobID string) {
	watcher := poll.NewWatcher(a.client, a.cfg.Poll.Interval, a.log)

	var last model.JobStatus
	job, err := watcher.Wait(ctx, token, jobID, func(j model.Job) {
		if j.Status != last {
			fmt.Fprintf(os.Stderr, "status: %s\n", j.Status)
			last = j.Status
		}
	})
	if err != nil {
		fail(err)
	}
	printJSON(job)
	if job.Status == model.StatusFailed && job.ErrorText != "" {
		fmt.Fprintln(os.Stderr, job.ErrorText)
		os.Exit(1)
	}
}

func (a *app) cmdDownload(args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	id := fs.String("id", "", "job id")
	out := fs.String("o", "", "output file (default <job id>.glb)")
	_ = fs.Parse(args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	if *out == "" {
		*out = *id + ".glb"
	}

	tok := a.token()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	job, err := a.client.GetJob(ctx, tok, *id)
	if err != nil {
		fail(err)
	}
	if job.Status != model.StatusSucceeded || job.OutputDownloadURL == "" {
		fail(fmt.Errorf("job %s has no downloadable output (status %s)", *id, job.Status))
	}

	f, err := os.Create(*out)
	if err != nil {
		fail(err)
	}
	defer f.Close()

	dl := artifact.NewDownloader(0, a.log)
	n, err := dl.Fetch(ctx, job.OutputDownloadURL, f)
	if err != nil {
		fail(err)
	}
	fmt.Printf("wrote %s (%dB)\n", *out, n)
}

func (a *app) cmdBuy(args []string) {
	fs := flag.NewFlagSet("buy", flag.ExitOnError)
	credits := fs.Int("credits", 10, "credit quantity")
	provider := fs.String("provider", "stripe", "payment provider (stripe|crypto)")
	currency := fs.String("currency", "usdt", "settlement currency (crypto only)")
	_ = fs.Parse(args)

	tok := a.token()
	ctx, cancel := shortCtx()
	defer cancel()

	svc := billing.NewService(a.client, a.log)
	intent, err := svc.Purchase(ctx, tok, *credits, billing.Provider(*provider), *currency)
	if err != nil {
		fail(err)
	}

	// The browser redirect of the web UI becomes a printed URL here; credits
	// appear on the balance only after the provider webhook settles.
	fmt.Println(intent.RedirectURL)
	if intent.InvoiceID != "" {
		fmt.Fprintf(os.Stderr, "invoice: %s\n", intent.InvoiceID)
	}
}

// ---- helpers ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		fmt.Fprintf(os.Stderr, "api error: %s\n", httpErr)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
