package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/clinic-booking/pkg/logging"
)

func TestRunRequiresDatabaseURL(t *testing.T) {
	err := run("", nil, logging.New("error"))
	assert.EqualError(t, err, "DATABASE_URL is required")
}
