// Copyright (c) 2024 Telisik Project and contributors, All rights reserved.
//
// This file is part of Telisik.
//
// Telisik is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation version 3 of the License.
//
// Telisik is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Telisik. If not, see <https://www.gnu.org/licenses/>.

package engine

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"

	log "github.com/telisik/telisik/internal/pkg/shared/logger"
	"github.com/telisik/telisik/internal/pkg/shared/str"
	"github.com/telisik/telisik/pkg/plugin"
)

const (
	moduleFileGlob = "module_*.json"
)

// Source configures one module instance loaded at startup
type Source struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Plugin  string `json:"plugin"`
	Config  string `json:"config"`
}

// Sources is a list of module Source entries
type Sources struct {
	Modules []Source `json:"modules"`
}

// LoadSourcesFromFile load module sources from namePattern (glob) files in confDir
func LoadSourcesFromFile(confDir string, namePattern string) (res Sources, totalFromFile int, err error) {
	p := path.Join(confDir, namePattern)
	files, err := filepath.Glob(p)
	if err != nil {
		return res, 0, err
	}
	totalFromFile = 0
	for i := range files {
		var s Sources
		var file *os.File
		file, err = os.Open(files[i])
		if err != nil {
			return res, 0, err
		}
		defer file.Close()

		byteValue, _ := io.ReadAll(file)
		err = json.Unmarshal(byteValue, &s)
		if err != nil {
			return res, 0, err
		}
		totalFromFile += len(s.Modules)
		for j := range s.Modules {
			if !s.Modules[j].Enabled {
				log.Warn(log.M{Msg: "Skipping disabled module source '" + s.Modules[j].Name + "'"})
				continue
			}
			err = validateSource(&s.Modules[j], &res)
			if err != nil {
				log.Warn(log.M{Msg: "Skipping module source '" + s.Modules[j].Name +
					"' due to error: " + err.Error()})
				continue
			}
			res.Modules = append(res.Modules, s.Modules[j])
		}
	}
	err = nil
	if len(res.Modules) == 0 {
		return res, 0, errors.New("Cannot load any module source from " + path.Join(confDir, namePattern))
	}
	return
}

func validateSource(s *Source, res *Sources) error {
	for _, v := range res.Modules {
		if v.Plugin == s.Plugin {
			return errors.New(s.Plugin + " is already used as a plugin by another source")
		}
	}
	if s.Name == "" || s.Plugin == "" {
		return errors.New("Name and Plugin cannot be empty")
	}
	return nil
}

// InitModules loads module sources from confDir, resolves each source
// to its registered plugin, and initializes it with the source config.
// A non-empty only list restricts loading to the named plugins.
func InitModules(confDir string, only []string) ([]plugin.Module, error) {
	sources, total, err := LoadSourcesFromFile(confDir, moduleFileGlob)
	if err != nil {
		return nil, err
	}
	log.Debug(log.M{Msg: "Loaded " + strconv.Itoa(len(sources.Modules)) + " out of " +
		strconv.Itoa(total) + " defined module sources"})

	var mods []plugin.Module
	for _, src := range sources.Modules {
		if len(only) > 0 && !str.IsInList(only, src.Plugin) {
			continue
		}
		m := plugin.Modules.Lookup(src.Plugin)
		if m == nil {
			log.Warn(log.M{Msg: "Skipping source '" + src.Name +
				"', no such plugin: " + src.Plugin})
			continue
		}
		if err := m.Initialize([]byte(src.Config)); err != nil {
			log.Warn(log.M{Msg: "Skipping source '" + src.Name +
				"' due to init error: " + err.Error(), Mod: src.Plugin})
			continue
		}
		log.Info(log.M{Msg: "Loaded module source '" + src.Name + "'", Mod: src.Plugin})
		mods = append(mods, m)
	}
	if len(mods) == 0 {
		return nil, errors.New("no module could be initialized from " + confDir)
	}
	return mods, nil
}
