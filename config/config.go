package config

import (
	"fmt"
	"time"

	"github.com/jxsl13/attr-state/logging"
	"github.com/jxsl13/attr-state/model"
)

// Mode is the action selected by the combination of path, attr and filelist.
type Mode int

const (
	ModeEnsure Mode = iota + 1
	ModeRestore
	ModeQuery
	ModeDump
)

func (m Mode) String() string {
	switch m {
	case ModeEnsure:
		return "ensure"
	case ModeRestore:
		return "restore"
	case ModeQuery:
		return "query"
	case ModeDump:
		return "dump"
	}
	return "unknown"
}

type Config struct {
	Path      string        `koanf:"path" short:"p" description:"full path of the object to get, set or unset attributes of (alias: name)"`
	Attr      string        `koanf:"attr" short:"a" description:"attributes to set or unset, one or more letters of aAcCdDeijsStTu"`
	State     string        `koanf:"state" short:"s" description:"present sets attr, absent clears it"`
	Recursive bool          `koanf:"recursive" short:"R" description:"get or set attributes recursively"`
	Filelist  string        `koanf:"filelist" short:"f" description:"JSON dump to save attributes into (with path) or to restore them from (without path)"`
	Check     bool          `koanf:"check" short:"C" description:"only report what would change"`
	Timeout   time.Duration `koanf:"timeout" short:"t" description:"timeout of every external tool invocation, 0 disables it"`
	Lsattr    string        `koanf:"lsattr" description:"lsattr executable name or path"`
	Chattr    string        `koanf:"chattr" description:"chattr executable name or path"`
	Xargs     string        `koanf:"xargs" description:"xargs executable name or path"`
	Output    string        `koanf:"output" short:"o" description:"result format: json or text"`
	LogLevel  string        `koanf:"log-level" short:"l" description:"log level: debug, info, warn or error"`

	Mode         Mode               `koanf:"-"`
	AttrSet      model.AttributeSet `koanf:"-"`
	DesiredState model.State        `koanf:"-"`
	Level        logging.LogLevel   `koanf:"-"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		State:    string(model.StatePresent),
		Lsattr:   "lsattr",
		Chattr:   "chattr",
		Xargs:    "xargs",
		Output:   "json",
		LogLevel: "warn",
	}
}

// Validate checks the values and derives Mode, AttrSet, DesiredState and Level.
func (c *Config) Validate() error {
	if c.Path == "" && c.Filelist == "" {
		return &model.ValidationError{Msg: "Use either path/name or filelist"}
	}

	state, err := model.ParseState(c.State)
	if err != nil {
		return err
	}
	c.DesiredState = state

	switch c.Output {
	case "json", "text":
	default:
		return &model.ValidationError{Field: "output", Msg: fmt.Sprintf("invalid output format %q: must be json or text", c.Output)}
	}

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return &model.ValidationError{Field: "log-level", Msg: err.Error()}
	}
	c.Level = level

	if c.Timeout < 0 {
		return &model.ValidationError{Field: "timeout", Msg: "timeout must not be negative"}
	}

	for name, tool := range map[string]string{"lsattr": c.Lsattr, "chattr": c.Chattr, "xargs": c.Xargs} {
		if tool == "" {
			return &model.ValidationError{Field: name, Msg: fmt.Sprintf("%s must not be empty", name)}
		}
	}

	switch {
	case c.Path != "" && c.Attr != "":
		attrs, err := model.ParseAttributeSet(c.Attr)
		if err != nil {
			return err
		}
		c.AttrSet = attrs
		c.Mode = ModeEnsure
	case c.Path == "" && c.Filelist != "":
		c.Mode = ModeRestore
	case c.Path != "" && c.Filelist != "":
		c.Mode = ModeDump
	case c.Path != "":
		c.Mode = ModeQuery
	default:
		return &model.ValidationError{Msg: "Unknown arguments combination"}
	}
	return nil
}
