// Package seed loads a catalog of events and an operator account from YAML.
// Events go through the regular store so they are normalized and validated
// exactly like events created over HTTP.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"devevent/model"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type File struct {
	Admin  *Admin      `yaml:"admin"`
	Events []EventSeed `yaml:"events"`
}

type Admin struct {
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
}

type EventSeed struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Overview    string   `yaml:"overview"`
	Image       string   `yaml:"image"`
	Venue       string   `yaml:"venue"`
	Location    string   `yaml:"location"`
	Date        string   `yaml:"date"`
	Time        string   `yaml:"time"`
	Mode        string   `yaml:"mode"`
	Audience    string   `yaml:"audience"`
	Agenda      []string `yaml:"agenda"`
	Organizer   string   `yaml:"organizer"`
	Tags        []string `yaml:"tags"`
}

func (s EventSeed) Event() model.Event {
	return model.Event{
		Title:       s.Title,
		Description: s.Description,
		Overview:    s.Overview,
		Image:       s.Image,
		Venue:       s.Venue,
		Location:    s.Location,
		Date:        s.Date,
		Time:        s.Time,
		Mode:        s.Mode,
		Audience:    s.Audience,
		Agenda:      s.Agenda,
		Organizer:   s.Organizer,
		Tags:        s.Tags,
	}
}

func Parse(r io.Reader) (File, error) {
	var file File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	return file, nil
}

func LoadFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer f.Close()
	return Parse(f)
}

type EventStore interface {
	FindBySlug(ctx context.Context, slug string) (*model.Event, error)
	CreateEvent(ctx context.Context, fields model.Event) (model.Event, error)
}

type UserStore interface {
	UpsertUser(ctx context.Context, user model.UserData) error
}

type Report struct {
	Created int
	Skipped int
}

type Seeder struct {
	events     EventStore
	users      UserStore
	bcryptCost int
	logger     *zap.Logger
}

func NewSeeder(events EventStore, users UserStore, logger *zap.Logger) *Seeder {
	return &Seeder{
		events:     events,
		users:      users,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger.Named("seed"),
	}
}

// Run creates missing events and upserts the admin. Events whose slug is
// already taken are skipped, so running it twice is harmless.
func (s *Seeder) Run(ctx context.Context, file File) (Report, error) {
	var report Report
	for _, entry := range file.Events {
		slug := model.DeriveSlug(entry.Title)
		existing, err := s.events.FindBySlug(ctx, slug)
		if err != nil {
			return report, err
		}
		if existing != nil {
			report.Skipped++
			s.logger.Info("event already present", zap.String("slug", slug))
			continue
		}
		if _, err := s.events.CreateEvent(ctx, entry.Event()); err != nil {
			return report, fmt.Errorf("seed event %q: %w", entry.Title, err)
		}
		report.Created++
	}

	if file.Admin != nil {
		if file.Admin.Login == "" || file.Admin.Password == "" {
			return report, fmt.Errorf("seed admin: login and password are required")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(file.Admin.Password), s.bcryptCost)
		if err != nil {
			return report, fmt.Errorf("hash admin password: %w", err)
		}
		err = s.users.UpsertUser(ctx, model.UserData{
			Login:          file.Admin.Login,
			HashedPassword: string(hash),
			Role:           model.RoleAdmin,
		})
		if err != nil {
			return report, err
		}
	}
	return report, nil
}
