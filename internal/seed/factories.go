// Package seed creates demo roster entries and posts for development and
// tests. Nothing here runs in production.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"draftdesk/internal/generator"
	"draftdesk/internal/models"
	"draftdesk/internal/observability"
	"draftdesk/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password hashed into every seeded roster entry.
const DemoPassword = "password123"

var (
	topics = []string{
		"AI", "Cloud Technology", "Fitness", "Wellness", "Marketing",
		"Small Business", "Remote Work", "Personal Finance", "Travel", "Open Source",
	}
	styles = []string{"professional", "casual", "technical", "persuasive"}
)

// Options sizes a seeding run.
type Options struct {
	Users         int     `yaml:"users"`
	PostsPerUser  int     `yaml:"posts_per_user"`
	PublishRatio  float64 `yaml:"publish_ratio"`
	ScheduleRatio float64 `yaml:"schedule_ratio"`
	MaxDays       int     `yaml:"max_days"`
	Admins        int     `yaml:"admins"`
	SkipBcrypt    bool    `yaml:"skip_bcrypt"`
	DryRun        bool    `yaml:"dry_run"`
	// Seed fixes the faker sequence. Zero derives one from the clock.
	Seed          int64   `yaml:"seed"`
}

// DefaultOptions is used by cmd/seed when no preset is named.
func DefaultOptions() Options {
	return Options{
		Users:         5,
		PostsPerUser:  4,
		PublishRatio:  0.5,
		ScheduleRatio: 0.2,
		MaxDays:       90,
		Admins:        1,
	}
}

// Summary reports what a run created.
type Summary struct {
	Users     int
	Posts     int
	Published int
	Scheduled int
}

// Factory builds roster entries and posts and persists them through the
// repositories.
type Factory struct {
	posts repository.PostRepository
	users repository.UserRepository
	opts  Options
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewFactory creates a Factory. Repositories may be nil in DryRun mode.
func NewFactory(posts repository.PostRepository, users repository.UserRepository, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		posts: posts,
		users: users,
		opts:  opts,
		faker: gofakeit.New(seed),
		now:   time.Now,
	}
}

// BuildUser constructs a roster entry without saving it.
func (f *Factory) BuildUser(overrides ...func(*models.RosterEntry)) (models.RosterEntry, error) {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	email := strings.ToLower(fmt.Sprintf("%s.%s%d@%s", first, last, f.faker.Number(10, 99), "draftdesk.dev"))

	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return models.RosterEntry{}, fmt.Errorf("hash demo password: %w", err)
	}

	entry := models.RosterEntry{
		User: models.User{
			ID:        f.faker.UUID(),
			Email:     email,
			Name:      first + " " + last,
			Role:      models.RoleUser,
			CreatedAt: f.pastTime(),
		},
		PasswordHash: string(hash),
	}
	for _, override := range overrides {
		override(&entry)
	}
	return entry, nil
}

// BuildPost constructs a post for user without saving it. The body comes
// from the local composer so seeded drafts read like generated ones.
func (f *Factory) BuildPost(user models.User, overrides ...func(*models.Post)) *models.Post {
	topic := f.faker.RandomString(topics)
	style := f.faker.RandomString(styles)
	title, content := generator.Fallback{}.Compose(topic, style)
	if f.faker.Bool() {
		title = strings.TrimSuffix(f.faker.Sentence(5), ".")
	}

	created := f.pastTime()
	post := &models.Post{
		ID:        f.faker.UUID(),
		Title:     title,
		Content:   content,
		Topic:     topic,
		Style:     style,
		UserID:    user.ID,
		CreatedAt: created,
		UpdatedAt: created,
	}

	switch roll := f.faker.Float64Range(0, 1); {
	case roll < f.opts.ScheduleRatio:
		at := f.now().UTC().Add(time.Duration(f.faker.Number(1, 14*24)) * time.Hour)
		post.IsPublished = true
		post.PublishDate = &at
	case roll < f.opts.ScheduleRatio+f.opts.PublishRatio:
		post.IsPublished = true
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// Run creates Options.Users roster entries with Options.PostsPerUser posts
// each. The first Options.Admins users are admins.
func (f *Factory) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	for i := 0; i < f.opts.Users; i++ {
		entry, err := f.BuildUser(func(e *models.RosterEntry) {
			if i < f.opts.Admins {
				e.Role = models.RoleAdmin
			}
		})
		if err != nil {
			return sum, err
		}
		if !f.opts.DryRun {
			if err := f.users.Upsert(ctx, entry); err != nil {
				return sum, fmt.Errorf("save user %s: %w", entry.Email, err)
			}
		}
		sum.Users++

		for j := 0; j < f.opts.PostsPerUser; j++ {
			post := f.BuildPost(entry.User)
			if !f.opts.DryRun {
				if err := f.posts.Create(ctx, post); err != nil {
					return sum, fmt.Errorf("save post for %s: %w", entry.Email, err)
				}
			}
			sum.Posts++
			switch {
			case post.IsScheduled(f.now()):
				sum.Scheduled++
			case post.IsPublished:
				sum.Published++
			}
		}
	}

	observability.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("published", sum.Published),
		slog.Int("scheduled", sum.Scheduled),
		slog.Bool("dry_run", f.opts.DryRun),
	)
	return sum, nil
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return f.now().UTC().Add(-back)
}
