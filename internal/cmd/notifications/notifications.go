// Package notifications provides the recruiter inbox command: list unread
// or all notifications, show the unread count, and acknowledge items.
package notifications

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	entrypoint "github.com/hirecrest/talentline/internal/platform/cmd"
	notificationsapp "github.com/hirecrest/talentline/internal/services/notifications/app"
	notificationsdomain "github.com/hirecrest/talentline/internal/services/notifications/domain"
	"github.com/hirecrest/talentline/internal/services/notifications/render"
	notificationssqlite "github.com/hirecrest/talentline/internal/services/notifications/storage/sqlite"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedTags = []language.Tag{
	language.English,
	language.MustParse("es-US"),
}

var tagMatcher = language.NewMatcher(supportedTags)

// Config holds inbox command configuration.
type Config struct {
	DBPath      string `env:"TALENTLINE_NOTIFICATIONS_DB_PATH" envDefault:"data/notifications.db"`
	Locale      string `env:"TALENTLINE_LOCALE" envDefault:"en"`
	PageSize    int    `env:"TALENTLINE_NOTIFICATIONS_PAGE_SIZE" envDefault:"50"`
	OnlyUnread  bool
	CountOnly   bool
	MarkRead    string
	MarkAllRead bool
	CandidateID string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The notifications SQLite database path")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Display language for rendered copy")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "Maximum notifications per page")
	fs.BoolVar(&cfg.OnlyUnread, "unread", false, "List only unread notifications")
	fs.BoolVar(&cfg.CountOnly, "count", false, "Print the unread count and exit")
	fs.StringVar(&cfg.MarkRead, "mark-read", "", "Acknowledge one notification by id")
	fs.BoolVar(&cfg.MarkAllRead, "mark-all-read", false, "Acknowledge every unread notification")
	fs.StringVar(&cfg.CandidateID, "candidate", "", "Limit -mark-all-read to one candidate")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the requested inbox action and writes output to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	store, err := notificationssqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open notifications sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close notifications sqlite store: %v", closeErr)
		}
	}()
	service := notificationsdomain.NewService(
		notificationsapp.NewDomainStoreAdapter(store), nil, nil)

	switch {
	case cfg.CountOnly:
		unread, err := service.CountUnread(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d unread\n", unread)
		return nil
	case strings.TrimSpace(cfg.MarkRead) != "":
		notification, err := service.MarkRead(ctx, cfg.MarkRead)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "marked %s read\n", notification.ID)
		return nil
	case cfg.MarkAllRead:
		changed, err := service.MarkAllRead(ctx, cfg.CandidateID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "marked %d notifications read\n", changed)
		return nil
	default:
		return listInbox(ctx, service, cfg, out)
	}
}

func listInbox(ctx context.Context, service *notificationsdomain.Service, cfg Config, out io.Writer) error {
	printer := printerFor(cfg.Locale)
	pageToken := ""
	for {
		page, err := service.ListInbox(ctx, notificationsdomain.ListInboxInput{
			OnlyUnread: cfg.OnlyUnread,
			PageSize:   cfg.PageSize,
			PageToken:  pageToken,
		})
		if err != nil {
			return err
		}
		for _, notification := range page.Notifications {
			rendered := render.Render(printer, render.Input{
				Topic:         notification.Topic,
				CandidateName: notification.CandidateName,
				NewStatus:     notification.NewStatus,
			})
			marker := " "
			if !notification.Read() {
				marker = "*"
				if notification.Priority == notificationsdomain.PriorityHigh {
					marker = "!"
				}
			}
			fmt.Fprintf(out, "%s %s  %s  %s\n", marker, notification.ID, rendered.Title, rendered.BodyText)
		}
		if page.NextPageToken == "" {
			return nil
		}
		pageToken = page.NextPageToken
	}
}

func printerFor(locale string) *message.Printer {
	parsed, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return message.NewPrinter(language.English)
	}
	matched, _, _ := tagMatcher.Match(parsed)
	return message.NewPrinter(matched)
}
