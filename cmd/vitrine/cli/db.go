package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vitrinehq/vitrine/internal/model"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "db",
		Aliases: []string{"database"},
		Short:   "Manage the database",
		Long:    "Run migrations, check connectivity, and seed content into the configured database.",
	}

	cmd.AddCommand(newDBMigrateCmd())
	cmd.AddCommand(newDBPingCmd())
	cmd.AddCommand(newDBSeedCmd())

	return cmd
}

// ---------- db migrate ----------

func newDBMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Apply the schema to the configured database. Migrations are idempotent; running this twice is safe.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBMigrate()
		},
	}

	return cmd
}

func runDBMigrate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Opening the store runs migrations.
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer st.Close()

	fmt.Printf("Schema is up to date (driver=%s)\n", st.Driver())
	return nil
}

// ---------- db ping ----------

func newDBPingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Test the database connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBPing()
		},
	}

	return cmd
}

func runDBPing() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.Ping(context.Background()); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	fmt.Println("Connection successful.")
	return nil
}

// ---------- db seed ----------

// seedFile is the YAML layout accepted by `vitrine db seed`.
type seedFile struct {
	Posts []struct {
		Slug        string `yaml:"slug"`
		Title       string `yaml:"title"`
		Body        string `yaml:"body"`
		CoverImage  string `yaml:"cover_image"`
		IsPublished bool   `yaml:"is_published"`
	} `yaml:"posts"`
	Products []struct {
		Name        string `yaml:"name"`
		Tagline     string `yaml:"tagline"`
		Description string `yaml:"description"`
		Image       string `yaml:"image"`
		PriceCents  int64  `yaml:"price_cents"`
		IsVisible   bool   `yaml:"is_visible"`
		SortOrder   int    `yaml:"sort_order"`
	} `yaml:"products"`
	Banners []struct {
		Product  string  `yaml:"product"`
		Message  string  `yaml:"message"`
		Href     *string `yaml:"href"`
		IsActive bool    `yaml:"is_active"`
	} `yaml:"banners"`
}

func newDBSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load content from a YAML file",
		Long:  "Insert posts, products, and banners from a YAML seed file. Existing rows are left alone; duplicate slugs fail the run.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(args[0])
		},
	}

	return cmd
}

func runDBSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	for _, p := range seed.Posts {
		post := &model.Post{
			Slug:        p.Slug,
			Title:       p.Title,
			Body:        p.Body,
			CoverImage:  p.CoverImage,
			IsPublished: p.IsPublished,
		}
		if err := st.CreatePost(ctx, post); err != nil {
			return fmt.Errorf("seed post %q: %w", p.Slug, err)
		}
	}

	for _, p := range seed.Products {
		product := &model.Product{
			Name:        p.Name,
			Tagline:     p.Tagline,
			Description: p.Description,
			Image:       p.Image,
			PriceCents:  p.PriceCents,
			IsVisible:   p.IsVisible,
			SortOrder:   p.SortOrder,
		}
		if err := st.CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	for _, b := range seed.Banners {
		bn := &model.Banner{
			Product:  b.Product,
			Message:  b.Message,
			Href:     b.Href,
			IsActive: b.IsActive,
		}
		if err := st.CreateBanner(ctx, bn); err != nil {
			return fmt.Errorf("seed banner %q: %w", b.Message, err)
		}
	}

	fmt.Printf("Seeded %d posts, %d products, %d banners\n",
		len(seed.Posts), len(seed.Products), len(seed.Banners))
	return nil
}
