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

package fs

import (
	"os"
	"path"
	"strings"
	"testing"
)

func TestFs(t *testing.T) {
	d, err := GetDir(true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(d, "telisik") {
		t.Fatal("expected dir to contain telisik, result: " + d)
	}

	tmp := t.TempDir()

	f := path.Join(tmp, "test.txt")
	if FileExist(f) {
		t.Fatal("expected file to not exist yet")
	}
	if err := AppendToFile("line1", f); err != nil {
		t.Fatal(err)
	}
	if !FileExist(f) {
		t.Fatal("expected file to exist")
	}
	if err := OverwriteFile("line2", f); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "line2\n" {
		t.Fatal("expected file content to be line2, result: " + string(b))
	}

	j := path.Join(tmp, "test.json")
	v := struct {
		Name string `json:"name"`
	}{Name: "telisik"}
	if err := OverwriteFileValueIndent(v, j); err != nil {
		t.Fatal(err)
	}
	b, err = os.ReadFile(j)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"name": "telisik"`) {
		t.Fatal("unexpected json content: " + string(b))
	}

	if err := EnsureDir(path.Join(tmp, "sub", "dir")); err != nil {
		t.Fatal(err)
	}
}
