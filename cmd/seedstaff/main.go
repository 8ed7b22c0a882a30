// Command seedstaff creates the initial admin account so the console is
// usable on a fresh database.
package main

import (
	"flag"
	"os"

	"tourdesk/internal/config"
	"tourdesk/internal/infra"
	"tourdesk/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	username := flag.String("username", "admin", "login username")
	name := flag.String("name", "Administrator", "display name")
	password := flag.String("password", "", "initial password (required)")
	role := flag.String("role", "admin", "moderator | operator | admin")
	flag.Parse()

	if *password == "" {
		log.Fatal().Msg("-password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	var count int64
	if err := db.Model(&model.Staff{}).Where("username = ?", *username).Count(&count).Error; err != nil {
		log.Fatal().Err(err).Msg("lookup failed")
	}
	if count > 0 {
		log.Info().Str("username", *username).Msg("account already exists, nothing to do")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("hash failed")
	}
	staff := &model.Staff{
		Username:     *username,
		Name:         *name,
		PasswordHash: string(hash),
		Role:         *role,
		Active:       true,
	}
	if err := db.Create(staff).Error; err != nil {
		log.Fatal().Err(err).Msg("insert failed")
	}
	log.Info().Str("username", *username).Str("role", *role).Msg("staff account created")
}
