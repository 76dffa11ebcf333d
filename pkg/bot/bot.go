package bot

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/inhies/go-bytesize"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"veil/pkg/pipeline"
	"veil/pkg/pixbuf"
	"veil/pkg/transform"
)

func New(token string, pipe *pipeline.Pipeline, logger *zap.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token: token,
		Poller: &tele.LongPoller{
			Timeout: 30 * time.Second,
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	return &Bot{
		b:    b,
		pipe: pipe,
		log:  logger,
	}, nil
}

// Bot converts images sent to it over telegram and replies with the
// result as a PNG document.
type Bot struct {
	b    *tele.Bot
	pipe *pipeline.Pipeline
	log  *zap.Logger
}

func (b *Bot) handleConfig() {
	b.b.Handle("/method", func(context tele.Context) error {
		in := context.Message().Payload
		if in == "" {
			return context.Reply(b.pipe.Describe())
		}

		m, err := transform.ParseGrayMethod(in)
		if err != nil {
			return context.Reply(fmt.Sprintf("change failed: %s", err))
		}

		b.pipe.SetMethod(m)
		return context.Reply("OK")
	})

	b.b.Handle("/ref", func(context tele.Context) error {
		in := context.Message().Payload
		if in == "" {
			return context.Reply(b.pipe.Describe())
		}

		r, err := transform.ParseReference(in)
		if err != nil {
			return context.Reply(fmt.Sprintf("change failed: %s", err))
		}

		b.pipe.SetReference(r)
		return context.Reply("OK")
	})

	b.b.Handle("/factor", func(context tele.Context) error {
		in := context.Message().Payload
		if in == "" {
			return context.Reply(b.pipe.Describe())
		}

		f, err := strconv.ParseFloat(in, 64)
		if err != nil {
			return context.Reply(fmt.Sprintf("change failed: %s", err))
		}
		if err := b.pipe.SetFactor(f); err != nil {
			return context.Reply(fmt.Sprintf("change failed: %s", err))
		}

		return context.Reply("OK")
	})

	b.b.Handle("/settings", func(context tele.Context) error {
		return context.Reply(b.pipe.Describe())
	})
}

func (b *Bot) handleAction() {
	b.b.Handle("/info", func(context tele.Context) error {
		entry := b.pipe.History().Curr()
		if entry == nil {
			return context.Reply("No conversion yet")
		}

		lines := []string{
			fmt.Sprintf("Input: %s", entry.Input),
			fmt.Sprintf("Output: %s", entry.Output),
			fmt.Sprintf("Resolution: %dx%d", entry.Width, entry.Height),
			fmt.Sprintf("Converted at: %s", entry.When.Format("2006-01-02 15:04:05")),
		}

		return context.Reply(strings.Join(lines, "\n"))
	})

	b.b.Handle(tele.OnPhoto, func(context tele.Context) error {
		photo := context.Message().Photo
		if photo == nil {
			return context.Reply("No photo attached")
		}
		return b.convertFile(context, &photo.File)
	})

	b.b.Handle(tele.OnDocument, func(context tele.Context) error {
		doc := context.Message().Document
		if doc == nil {
			return context.Reply("No document attached")
		}
		return b.convertFile(context, &doc.File)
	})
}

const replyName = "veil.png"

// inputLabel identifies a telegram upload in the conversion history.
func inputLabel(file *tele.File) string {
	if file.UniqueID == "" {
		return "telegram"
	}
	return "telegram:" + file.UniqueID
}

func (b *Bot) convertFile(context tele.Context, file *tele.File) error {
	rc, err := b.b.File(file)
	if err != nil {
		return context.Reply(fmt.Sprintf("download failed: %s", err))
	}
	defer func() {
		_ = rc.Close()
	}()

	bs, err := io.ReadAll(rc)
	if err != nil {
		return context.Reply(fmt.Sprintf("download failed: %s", err))
	}

	img, _, err := image.Decode(bytes.NewBuffer(bs))
	if err != nil {
		return context.Reply(fmt.Sprintf("decode failed: %s", err))
	}

	out, err := b.pipe.Convert(pixbuf.FromImage(img))
	if err != nil {
		return context.Reply(fmt.Sprintf("convert failed: %s", err))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out.Image()); err != nil {
		return context.Reply(fmt.Sprintf("encode failed: %s", err))
	}

	b.pipe.History().Add(inputLabel(file), replyName, out.W, out.H)
	b.log.With(zap.Int("width", out.W), zap.Int("height", out.H)).Debug("converted for telegram")

	return context.Reply(&tele.Document{
		File:     tele.FromReader(&buf),
		FileName: replyName,
		MIME:     "image/png",
		Caption:  fmt.Sprintf("%dx%d, %s", out.W, out.H, bytesize.New(float64(buf.Len())).String()),
	})
}

func (b *Bot) Start() {
	b.handleConfig()
	b.handleAction()
	go b.b.Start()
}

func (b *Bot) Stop() {
	// telebot's Stop blocks until the current long poll returns.
	go b.b.Stop()
}
