// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package funcutil

import (
	"strconv"
	"testing"
)

func TestMapParallelKeepsOrder(t *testing.T) {
	var in []int
	for i := 0; i < 100; i++ {
		in = append(in, i)
	}
	for _, workers := range []int{-1, 1, 3, 200} {
		out := MapParallel(in, strconv.Itoa, workers)
		if len(out) != len(in) {
			t.Fatalf("expected %d results with %d workers, got %d", len(in), workers, len(out))
		}
		for i, s := range out {
			if s != strconv.Itoa(i) {
				t.Errorf("result %d is %q with %d workers", i, s, workers)
			}
		}
	}
	if out := MapParallel(nil, strconv.Itoa, 4); len(out) != 0 {
		t.Errorf("expected no result on empty input, got %v", out)
	}
}

func TestMapAndContains(t *testing.T) {
	out := Map([]string{"a", "bb"}, func(s string) int { return len(s) })
	if len(out) != 2 || out[0] != 1 || out[1] != 2 {
		t.Errorf("unexpected result of Map: %v", out)
	}
	if !Contains([]string{"jndi", "exec"}, "exec") || Contains([]string{"jndi"}, "xxe") {
		t.Errorf("unexpected result of Contains")
	}
	if Exists([]int{}, func(int) bool { return true }) {
		t.Errorf("no element exists in an empty slice")
	}
}
