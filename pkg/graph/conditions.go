// Copyright 2025 The CoReason Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graph

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// conditionChecker syntax-checks switch-case conditions. Conditions are
// CEL expressions; the compiler only parses them — it never declares their
// identifiers, type-checks, or evaluates them. Interpreting condition
// semantics belongs to the runtime, not this system.
type conditionChecker struct {
	env *cel.Env
}

func newConditionChecker() (*conditionChecker, error) {
	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create condition environment: %w", err)
	}
	return &conditionChecker{env: env}, nil
}

// check returns the parse error for expr, or nil when expr is
// syntactically valid CEL.
func (cc *conditionChecker) check(expr string) error {
	_, issues := cc.env.Parse(expr)
	if issues != nil && issues.Err() != nil {
		return issues.Err()
	}
	return nil
}
