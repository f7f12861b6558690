package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, status := range Statuses() {
		assert.True(t, status.Valid(), "expected %q to be valid", status)
	}

	invalid := []OrderStatus{"", "unknown", "Pending", "SHIPPED", "in-flight"}
	for _, status := range invalid {
		assert.False(t, status.Valid(), "expected %q to be invalid", status)
	}
}

func TestStatusesCoversEveryConstant(t *testing.T) {
	statuses := Statuses()
	assert.Len(t, statuses, 7)
	assert.Equal(t, StatusPending, statuses[0])
}
