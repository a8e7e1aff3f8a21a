package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kplex-io/kplexmux/config"
)

func TestBuild_MissingURLErrors(t *testing.T) {
	_, err := Build(config.Interface{Options: map[string]string{"subject": "nmea.in"}}, config.Global{}, nil)
	assert.Error(t, err)
}

func TestBuild_MissingSubjectErrors(t *testing.T) {
	_, err := Build(config.Interface{Options: map[string]string{"url": "nats://localhost:4222"}}, config.Global{}, nil)
	assert.Error(t, err)
}
