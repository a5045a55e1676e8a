// Package presets contains named configurations applied before the config file.
package presets

import (
	"fmt"
	"sort"

	"github.com/spacemeshos/go-entrypoint/config"
)

var presets = map[string]config.Config{}

func register(name string, conf config.Config) {
	if _, exist := presets[name]; exist {
		panic(fmt.Sprintf("preset with name %s already exists", name))
	}
	presets[name] = conf
}

// Options returns names of the registered presets.
func Options() []string {
	rst := make([]string, 0, len(presets))
	for name := range presets {
		rst = append(rst, name)
	}
	sort.Strings(rst)
	return rst
}

// Get a copy of the preset with the name.
func Get(name string) (config.Config, error) {
	conf, exist := presets[name]
	if !exist {
		return config.Config{}, fmt.Errorf("preset %s is not registered. select one from %v", name, Options())
	}
	conf.Engine.Venues = append(conf.Engine.Venues[:0:0], conf.Engine.Venues...)
	conf.Genesis.Accounts = append(conf.Genesis.Accounts[:0:0], conf.Genesis.Accounts...)
	return conf, nil
}
