package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kiryu-dev/chess-puzzle/internal/domain"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoLevels       = errors.New("there are no specified levels")
	ErrDuplicateLevel = errors.New("duplicate level name")
)

const defaultAddr = ":8080"

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("http://%s:%d", s.Host, s.Port)
}

type LevelConfig struct {
	Name      string             `yaml:"name"`
	Board     []string           `yaml:"board"`
	Start     domain.Position    `yaml:"start"`
	Pieces    []domain.PieceType `yaml:"pieces"`
	TimeLimit int                `yaml:"time_limit"`
}

func (l LevelConfig) toLevel() (domain.Level, error) {
	board, err := domain.ParseBoard(l.Board)
	if err != nil {
		return domain.Level{}, errors.WithMessagef(err, "parse board of level '%s'", l.Name)
	}
	level := domain.Level{
		Name:      l.Name,
		Board:     board,
		Start:     l.Start,
		Pieces:    l.Pieces,
		TimeLimit: time.Duration(l.TimeLimit) * time.Second,
	}
	if err := level.Validate(); err != nil {
		return domain.Level{}, err
	}
	return level, nil
}

type Config struct {
	Addr   string
	Peers  []ServerConfig
	Levels []domain.Level
}

type fileConfig struct {
	Addr   string         `yaml:"addr"`
	Peers  []ServerConfig `yaml:"report_peers"`
	Levels []LevelConfig  `yaml:"levels"`
}

func New(cfgPath string) (Config, error) {
	file, err := os.Open(cfgPath)
	if err != nil {
		return Config{}, err
	}
	defer func() {
		_ = file.Close()
	}()
	return Decode(file)
}

func Decode(r io.Reader) (Config, error) {
	raw := fileConfig{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return Config{}, err
	}
	if len(raw.Levels) == 0 {
		return Config{}, ErrNoLevels
	}
	cfg := Config{
		Addr:   raw.Addr,
		Peers:  raw.Peers,
		Levels: make([]domain.Level, 0, len(raw.Levels)),
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Addr = port
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	names := make(map[string]struct{}, len(raw.Levels))
	for _, l := range raw.Levels {
		if _, ok := names[l.Name]; ok {
			return Config{}, errors.WithMessagef(ErrDuplicateLevel, "'%s'", l.Name)
		}
		names[l.Name] = struct{}{}
		level, err := l.toLevel()
		if err != nil {
			return Config{}, err
		}
		cfg.Levels = append(cfg.Levels, level)
	}
	return cfg, nil
}

func (c Config) PeerAddrs() []string {
	addrs := make([]string, 0, len(c.Peers))
	for _, p := range c.Peers {
		addrs = append(addrs, p.Addr())
	}
	return addrs
}
