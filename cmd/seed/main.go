// Command main seeds the configured store with demo roster entries and posts.
package main

import (
	"context"
	"flag"
	"log"

	"draftdesk/internal/config"
	"draftdesk/internal/repository"
	"draftdesk/internal/seed"
	"draftdesk/internal/store"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "Posts per user")
	flag.IntVar(&opts.Admins, "admins", opts.Admins, "How many of the users are admins")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Build data without writing it")
	flag.BoolVar(&opts.SkipBcrypt, "fast", false, "Hash demo passwords at minimum cost")
	preset := flag.String("preset", "", "Apply a named seeder preset (ignores sizing flags)")
	presetsFile := flag.String("presets-file", "", "YAML file with extra presets")
	shouldClean := flag.Bool("clean", false, "Delete existing posts and roster before seeding")
	flag.Parse()

	log.Println("DraftDesk Seeder")
	log.Println("================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production store")
	}

	if *preset != "" {
		if opts, err = seed.LoadPreset(*presetsFile, *preset); err != nil {
			log.Fatalf("Preset lookup failed: %v", err)
		}
		log.Printf("Applying preset: %s\n", *preset)
	} else {
		log.Printf("Target: %d users, %d posts each, clean=%v\n", opts.Users, opts.PostsPerUser, *shouldClean)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	if *shouldClean && !opts.DryRun {
		for _, table := range []string{store.TablePosts, store.TableUsers} {
			if err := st.Delete(ctx, table); err != nil {
				log.Fatalf("Cleanup of %s failed: %v", table, err)
			}
		}
	}

	sum, err := seed.NewFactory(repository.NewPostRepository(st), repository.NewUserRepository(st), opts).Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users and %d posts (%d published, %d scheduled)\n", sum.Users, sum.Posts, sum.Published, sum.Scheduled)
	log.Printf("All seeded users have the password: %s\n", seed.DemoPassword)
}
