// Copyright 2026 The Mirrorfs Authors.
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

package cfg

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
)

type ConfigTest struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTest))
}

func (t *ConfigTest) TestDefaultsSurviveBindWithNoOverride() {
	viper.Reset()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	err := BindFlags(fs)
	t.Require().NoError(err)

	var c Config
	t.Require().NoError(viper.Unmarshal(&c))
	t.Assert().Equal(Default(), c)
}

func (t *ConfigTest) TestFlagOverridesDefault() {
	viper.Reset()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	t.Require().NoError(BindFlags(fs))
	t.Require().NoError(fs.Parse([]string{"--abort-on-difference=false", "--log-operations=true"}))

	var c Config
	t.Require().NoError(viper.Unmarshal(&c))
	t.Assert().False(c.AbortOnDifference)
	t.Assert().True(c.LogOperations)
}
