//cmd/seeder/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joho/godotenv"

	"github.com/unclebandit/mailmirror-backend/internal/db"
	"github.com/unclebandit/mailmirror-backend/internal/model"
	"github.com/unclebandit/mailmirror-backend/internal/repository"
)

// seedFile mirrors seed/categories.yaml: the category/keyword rule set an
// installation starts from. Seeding goes through the repository so a
// duplicate keyword fails loudly instead of half-applying.
type seedFile struct {
	Categories []struct {
		Name       string `yaml:"name"`
		Rank       int    `yaml:"rank"`
		SmartMatch *bool  `yaml:"smart_match"`
		Keywords   []struct {
			Value         string `yaml:"value"`
			Rank          int    `yaml:"rank"`
			ScopeName     *bool  `yaml:"scope_name"`
			ScopeSubject  bool   `yaml:"scope_subject"`
			ScopeContent  bool   `yaml:"scope_content"`
			ScopeListName *bool  `yaml:"scope_listname"`
		} `yaml:"keywords"`
	} `yaml:"categories"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	db.Init()
	defer db.DB.Close()

	schema, err := os.ReadFile("seed/schema.sql")
	if err != nil {
		log.Fatalf("failed to read seed/schema.sql: %v", err)
	}
	if _, err := db.DB.Exec(string(schema)); err != nil {
		log.Fatalf("failed to execute seed/schema.sql: %v", err)
	}
	fmt.Println("Seeded: seed/schema.sql")

	raw, err := os.ReadFile("seed/categories.yaml")
	if err != nil {
		log.Fatalf("failed to read seed/categories.yaml: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("failed to parse seed/categories.yaml: %v", err)
	}

	categoryRepo := &repository.CategoryRepository{DB: db.DB}

	for _, sc := range seed.Categories {
		smartMatch := true
		if sc.SmartMatch != nil {
			smartMatch = *sc.SmartMatch
		}
		category := &model.Category{Name: sc.Name, Rank: sc.Rank, SmartMatch: smartMatch}
		if err := categoryRepo.Create(category); err != nil {
			log.Fatalf("failed to create category %q: %v", sc.Name, err)
		}

		for _, sk := range sc.Keywords {
			keyword := &model.Keyword{
				CategoryID:    category.ID,
				Value:         sk.Value,
				Rank:          sk.Rank,
				ScopeName:     true,
				ScopeSubject:  sk.ScopeSubject,
				ScopeContent:  sk.ScopeContent,
				ScopeListName: true,
			}
			if sk.ScopeName != nil {
				keyword.ScopeName = *sk.ScopeName
			}
			if sk.ScopeListName != nil {
				keyword.ScopeListName = *sk.ScopeListName
			}
			if err := categoryRepo.CreateKeyword(keyword); err != nil {
				log.Fatalf("failed to create keyword %q: %v", sk.Value, err)
			}
		}
		fmt.Printf("Seeded: category %q (%d keywords)\n", sc.Name, len(sc.Keywords))
	}

	fmt.Println("Database seeding completed successfully!")
}
