package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tbapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/sashabaranov/go-openai"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ruspam/gatekeeper/app/bot"
	"github.com/ruspam/gatekeeper/app/events"
	"github.com/ruspam/gatekeeper/app/storage"
	"github.com/ruspam/gatekeeper/app/webapi"
	"github.com/ruspam/gatekeeper/lib/gate"
)

type options struct {
	Telegram struct {
		Token   string        `long:"token" env:"TOKEN" description:"telegram bot token" required:"true"`
		Group   string        `long:"group" env:"GROUP" description:"group name/id" required:"true"`
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"http client timeout for telegram"`
	} `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`

	Model struct {
		API       string        `long:"api" env:"API" default:"http://127.0.0.1:8000" description:"model inference API url"`
		Name      string        `long:"name" env:"NAME" default:"NeuroSpaceX/ruSpamNS_v1" description:"classifier model name"`
		MaxLength int           `long:"max-length" env:"MAX_LENGTH" default:"128" description:"max tokens passed to the model"`
		Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"model API timeout"`
	} `group:"model" namespace:"model" env-namespace:"MODEL"`

	OpenAI struct {
		Token             string `long:"token" env:"TOKEN" description:"openai token, used instead of the model API if set"`
		Prompt            string `long:"prompt" env:"PROMPT" default:"" description:"openai system prompt, if empty uses builtin default"`
		Model             string `long:"model" env:"MODEL" default:"gpt-4" description:"openai model"`
		MaxTokensResponse int    `long:"max-tokens-response" env:"MAX_TOKENS_RESPONSE" default:"1024" description:"openai max tokens in response"`
		MaxTokensRequest  int    `long:"max-tokens-request" env:"MAX_TOKENS_REQUEST" default:"2048" description:"openai max tokens in request"`
		MaxSymbolsRequest int    `long:"max-symbols-request" env:"MAX_SYMBOLS_REQUEST" default:"16000" description:"openai max symbols in request, failback if tokenizer failed"`
	} `group:"openai" namespace:"openai" env-namespace:"OPENAI"`

	Files struct {
		StopPhrasesFile string        `long:"stop-phrases" env:"STOP_PHRASES" default:"" description:"stop phrases file, reloaded on change"`
		WatchInterval   time.Duration `long:"watch-interval" env:"WATCH_INTERVAL" default:"5s" description:"watch interval"`
	} `group:"files" namespace:"files" env-namespace:"FILES"`

	Logger struct {
		Enabled    bool   `long:"enabled" env:"ENABLED" description:"enable spam rotated logs"`
		FileName   string `long:"file" env:"FILE"  default:"gatekeeper.log" description:"location of spam log"`
		MaxSize    string `long:"max-size" env:"MAX_SIZE" default:"100M" description:"maximum size before it gets rotated"`
		MaxBackups int    `long:"max-backups" env:"MAX_BACKUPS" default:"10" description:"maximum number of old log files to retain"`
	} `group:"logger" namespace:"logger" env-namespace:"LOGGER"`

	Server struct {
		Enabled    bool   `long:"enabled" env:"ENABLED" description:"enable web API server"`
		ListenAddr string `long:"listen" env:"LISTEN" default:":8080" description:"listen address"`
		AuthPasswd string `long:"auth" env:"AUTH" default:"" description:"basic auth password for user gatekeeper, disabled if empty"`
	} `group:"server" namespace:"server" env-namespace:"SERVER"`

	Message struct {
		Startup string `long:"startup" env:"STARTUP" default:"" description:"startup message"`
		Spam    string `long:"spam" env:"SPAM" default:"this is spam" description:"spam message"`
		Dry     string `long:"dry" env:"DRY" default:"this is spam (dry mode)" description:"spam dry message"`
	} `group:"message" namespace:"message" env-namespace:"MESSAGE"`

	DBConn string `long:"db" env:"DB" default:"" description:"detected spam database, sqlite file or postgres url, disabled if empty"`

	SpamThreshold  float64       `long:"spam-threshold" env:"SPAM_THRESHOLD" default:"0.5" description:"min model score to treat a message as spam"`
	TrackingWindow time.Duration `long:"tracking-window" env:"TRACKING_WINDOW" default:"168h" description:"how long to wait for a newcomer's first message"`
	MaxEmoji       int           `long:"max-emoji" env:"MAX_EMOJI" default:"0" description:"max emoji count in message, 0 to disable check"`

	NoSpamReply bool `long:"no-spam-reply" env:"NO_SPAM_REPLY" description:"do not reply to spam messages"`
	Dry         bool `long:"dry" env:"DRY" description:"dry mode, no bans and no deletions"`
	Dbg         bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	TGDbg       bool `long:"tg-dbg" env:"TG_DEBUG" description:"telegram debug mode"`
}

var revision = "local"

func main() {
	fmt.Printf("gatekeeper %s\n", revision)
	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	p.SubcommandsOptional = true
	if _, err := p.Parse(); err != nil {
		if err.(*flags.Error).Type != flags.ErrHelp {
			log.Printf("[ERROR] cli error: %v", err)
		}
		os.Exit(2)
	}

	setupLog(opts.Dbg, opts.Telegram.Token, opts.OpenAI.Token)
	log.Printf("[DEBUG] options: %+v", opts)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		// catch signal and invoke graceful termination
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Printf("[WARN] interrupt signal")
		cancel()
	}()

	if err := execute(ctx, opts); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context, opts options) error {
	if opts.Dry {
		log.Print("[WARN] dry mode, no actual bans")
	}

	// make telegram bot
	tbAPI, err := tbapi.NewBotAPI(opts.Telegram.Token)
	if err != nil {
		return fmt.Errorf("can't make telegram bot, %w", err)
	}
	tbAPI.Debug = opts.TGDbg
	tbAPI.Client = &http.Client{Timeout: opts.Telegram.Timeout}

	// make detector with the configured scorer
	detector := gate.NewDetector(makeScorer(opts), gate.Config{
		SpamThreshold:   opts.SpamThreshold,
		MaxAllowedEmoji: opts.MaxEmoji,
	})

	// make gatekeeper bot tracking newcomers
	tracker := bot.NewTracker(opts.TrackingWindow)
	gkParams := bot.GateConfig{
		StopPhrasesFile: opts.Files.StopPhrasesFile,
		SpamMsg:         opts.Message.Spam,
		SpamDryMsg:      opts.Message.Dry,
		WatchDelay:      opts.Files.WatchInterval,
		Dry:             opts.Dry,
	}
	gatekeeper := bot.NewGatekeeper(ctx, detector, tracker, gkParams)
	log.Printf("[DEBUG] gatekeeper bot config: %+v", gkParams)

	// make detected spam storage, optional
	var detectedStore *storage.DetectedSpam
	if opts.DBConn != "" {
		db, serr := storage.New(ctx, opts.DBConn)
		if serr != nil {
			return fmt.Errorf("can't make detected spam database, %w", serr)
		}
		defer db.Close()
		if detectedStore, serr = storage.NewDetectedSpam(ctx, db); serr != nil {
			return fmt.Errorf("can't make detected spam store, %w", serr)
		}
		log.Printf("[DEBUG] detected spam storage: %s (%s)", opts.DBConn, db.Type())
	}

	// make spam logger
	loggerWr, err := makeSpamLogWriter(opts)
	if err != nil {
		return fmt.Errorf("can't make spam log writer, %w", err)
	}
	defer loggerWr.Close()

	// run web API server, optional
	if opts.Server.Enabled {
		srv := webapi.NewServer(webapi.Config{
			Version:    revision,
			ListenAddr: opts.Server.ListenAddr,
			Detector:   detector,
			SpamStore:  spamStore(detectedStore),
			Tracker:    gatekeeper,
			AuthPasswd: opts.Server.AuthPasswd,
			Dbg:        opts.Dbg,
		})
		go func() {
			if serr := srv.Run(ctx); serr != nil {
				log.Printf("[ERROR] web API server failed, %v", serr)
			}
		}()
	}

	// make telegram listener
	tgListener := events.TelegramListener{
		TbAPI:       tbAPI,
		SpamLogger:  makeSpamLogger(loggerWr, detectedStore),
		Bot:         gatekeeper,
		Group:       opts.Telegram.Group,
		StartupMsg:  opts.Message.Startup,
		NoSpamReply: opts.NoSpamReply,
		Dry:         opts.Dry,
	}
	log.Printf("[DEBUG] telegram listener config: {group: %s, no-reply: %v, dry: %v}",
		tgListener.Group, tgListener.NoSpamReply, tgListener.Dry)

	// run telegram listener and event processor loop
	if err := tgListener.Do(ctx); err != nil {
		return fmt.Errorf("telegram listener failed, %w", err)
	}
	return nil
}

// makeScorer picks the classifier backend: openai if the token is set,
// the rubert-style inference API otherwise.
func makeScorer(opts options) gate.Scorer {
	if opts.OpenAI.Token != "" {
		log.Printf("[WARN] openai scorer enabled, model %s", opts.OpenAI.Model)
		return gate.NewOpenAIScorer(openai.NewClient(opts.OpenAI.Token), gate.OpenAIConfig{
			SystemPrompt:      opts.OpenAI.Prompt,
			Model:             opts.OpenAI.Model,
			MaxTokensResponse: opts.OpenAI.MaxTokensResponse,
			MaxTokensRequest:  opts.OpenAI.MaxTokensRequest,
			MaxSymbolsRequest: opts.OpenAI.MaxSymbolsRequest,
		})
	}
	log.Printf("[INFO] model scorer enabled, %s via %s", opts.Model.Name, opts.Model.API)
	return gate.NewRubertScorer(&http.Client{Timeout: opts.Model.Timeout}, gate.RubertConfig{
		API:       opts.Model.API,
		Model:     opts.Model.Name,
		MaxLength: opts.Model.MaxLength,
	})
}

// spamStore converts a possibly-nil concrete store to the webapi interface,
// avoiding a typed-nil inside the interface value.
func spamStore(ds *storage.DetectedSpam) webapi.SpamStore {
	if ds == nil {
		return nil
	}
	return ds
}

// makeSpamLogger creates spam logger to keep reports about spam messages.
// It writes json lines to the provided writer and, if the store is set,
// keeps the detection in the database for the web API.
func makeSpamLogger(wr io.Writer, detectedStore *storage.DetectedSpam) events.SpamLogger {
	return events.SpamLoggerFunc(func(msg *bot.Message, response *bot.Response) {
		text := strings.ReplaceAll(msg.Text, "\n", " ")
		text = strings.TrimSpace(text)
		log.Printf("[DEBUG] spam message from %v: %q", msg.From, text)
		m := struct {
			TimeStamp   string `json:"ts"`
			DisplayName string `json:"display_name"`
			UserName    string `json:"user_name"`
			UserID      int64  `json:"user_id"`
			Text        string `json:"text"`
		}{
			TimeStamp:   time.Now().In(time.Local).Format(time.RFC3339),
			DisplayName: msg.From.DisplayName,
			UserName:    msg.From.Username,
			UserID:      msg.From.ID,
			Text:        text,
		}
		line, err := json.Marshal(&m)
		if err != nil {
			log.Printf("[WARN] can't marshal json, %v", err)
			return
		}
		if _, err := wr.Write(append(line, '\n')); err != nil {
			log.Printf("[WARN] can't write to log, %v", err)
		}

		if detectedStore == nil {
			return
		}
		score := 0.0
		for _, cr := range response.CheckResults {
			if cr.Score > score {
				score = cr.Score
			}
		}
		rec := storage.DetectedSpamInfo{
			Text:      text,
			UserID:    msg.From.ID,
			UserName:  msg.From.Username,
			ChatID:    msg.ChatID,
			Score:     score,
			Timestamp: time.Now().In(time.Local),
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := detectedStore.Write(ctx, rec, response.CheckResults); err != nil {
			log.Printf("[WARN] can't save detected spam, %v", err)
		}
	})
}

// makeSpamLogWriter creates spam log writer to keep reports about spam messages
// it parses options and makes lumberjack logger with rotation
func makeSpamLogWriter(opts options) (accessLog io.WriteCloser, err error) {
	if !opts.Logger.Enabled {
		return nopWriteCloser{io.Discard}, nil
	}

	maxSize, perr := sizeParse(opts.Logger.MaxSize)
	if perr != nil {
		return nil, fmt.Errorf("can't parse logger MaxSize: %w", perr)
	}

	maxSize /= 1048576

	log.Printf("[INFO] logger enabled for %s, max size %dM", opts.Logger.FileName, maxSize)
	return &lumberjack.Logger{
		Filename:   opts.Logger.FileName,
		MaxSize:    int(maxSize), // in MB
		MaxBackups: opts.Logger.MaxBackups,
		Compress:   true,
		LocalTime:  true,
	}, nil
}

// sizeParse converts size value with optional k/m/g/t suffix to bytes
func sizeParse(inp string) (uint64, error) {
	if inp == "" {
		return 0, errors.New("empty value")
	}
	for i, sfx := range []string{"k", "m", "g", "t"} {
		if strings.HasSuffix(inp, strings.ToUpper(sfx)) || strings.HasSuffix(inp, strings.ToLower(sfx)) {
			val, err := strconv.Atoi(inp[:len(inp)-1])
			if err != nil {
				return 0, fmt.Errorf("can't parse %s: %w", inp, err)
			}
			return uint64(float64(val) * math.Pow(float64(1024), float64(i+1))), nil
		}
	}
	return strconv.ParseUint(inp, 10, 64)
}

type nopWriteCloser struct{ io.Writer }

func (n nopWriteCloser) Close() error { return nil }

func setupLog(dbg bool, secrets ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	secrets = func(ss []string) (res []string) {
		for _, s := range ss {
			if s != "" {
				res = append(res, s)
			}
		}
		return res
	}(secrets)
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
