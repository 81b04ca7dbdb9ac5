package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"minitodo/internal/task"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultLogName        = "todo.log"
	appDir                = "minitodo"
	envConfig             = "TODO_CONFIG"
)

type Keymap struct {
	Quit         string `toml:"quit"`
	Add          string `toml:"add"`
	Detail       string `toml:"detail"`
	Up           string `toml:"up"`
	Down         string `toml:"down"`
	Toggle       string `toml:"toggle"`
	Delete       string `toml:"delete"`
	Confirm      string `toml:"confirm"`
	Cancel       string `toml:"cancel"`
	Edit         string `toml:"edit"`
	Due          string `toml:"due"`
	Priority     string `toml:"priority"`
	Select       string `toml:"select"`
	BulkComplete string `toml:"bulk_complete"`
	BulkDelete   string `toml:"bulk_delete"`
	ClearDone    string `toml:"clear_done"`
	Reset        string `toml:"reset"`
	Undo         string `toml:"undo"`
	Search       string `toml:"search"`
	Filter       string `toml:"filter"`
	Sort         string `toml:"sort"`
	Export       string `toml:"export"`
	Import       string `toml:"import"`
}

type Config struct {
	DBPath        string `toml:"db_path"`
	LogPath       string `toml:"log_path"`
	LogLevel      string `toml:"log_level"`
	ExportPath    string `toml:"export_path"`
	Locale        string `toml:"locale"`
	Undo          bool   `toml:"undo"`
	PersistView   bool   `toml:"persist_view"`
	DefaultFilter string `toml:"default_filter"`
	DefaultSort   string `toml:"default_sort"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath picks $TODO_CONFIG, then the XDG config dir, then the
// working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(envConfig)); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDir, DefaultConfigFileName)
	}
	return DefaultConfigFileName
}

func LoadOrCreate(path string) (Config, error) {
	cfg := Default(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}
	return cfg, nil
}

func (c Config) Prefs() task.Prefs {
	p := task.Prefs{Filter: task.ParseFilter(c.DefaultFilter), Sort: task.SortKey(c.DefaultSort)}
	if p.Sort == "" {
		p.Sort = task.SortCreated
	}
	return p
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default(dir string) Config {
	return Config{
		DBPath:        filepath.Join(dir, DefaultDBName),
		LogPath:       filepath.Join(dir, DefaultLogName),
		LogLevel:      "info",
		ExportPath:    "todo-export.json",
		Locale:        "es",
		Undo:          true,
		PersistView:   true,
		DefaultFilter: "all",
		DefaultSort:   "created",
		Keys: Keymap{
			Quit:         "q",
			Add:          "a",
			Detail:       "enter",
			Up:           "k",
			Down:         "j",
			Toggle:       " ",
			Delete:       "d",
			Confirm:      "enter",
			Cancel:       "esc",
			Edit:         "e",
			Due:          "t",
			Priority:     "p",
			Select:       "x",
			BulkComplete: "C",
			BulkDelete:   "X",
			ClearDone:    "c",
			Reset:        "R",
			Undo:         "u",
			Search:       "/",
			Filter:       "f",
			Sort:         "s",
			Export:       "ctrl+s",
			Import:       "i",
		},
	}
}
