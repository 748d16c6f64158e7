package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status ItemStatus
		want   bool
	}{
		{"processing", ItemStatusProcessing, true},
		{"shipped", ItemStatusShipped, true},
		{"approved", ItemStatusApproved, true},
		{"cancelled", ItemStatusCancelled, true},
		{"zero", ItemStatus(0), false},
		{"out of range", ItemStatus(99), false},
		{"negative", ItemStatus(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

func TestAllItemsApproved(t *testing.T) {
	tests := []struct {
		name  string
		items []OrderItem
		want  bool
	}{
		{
			name:  "no items is never approved",
			items: nil,
			want:  false,
		},
		{
			name: "all approved",
			items: []OrderItem{
				{Status: ItemStatusApproved},
				{Status: ItemStatusApproved},
			},
			want: true,
		},
		{
			name: "one still processing",
			items: []OrderItem{
				{Status: ItemStatusApproved},
				{Status: ItemStatusProcessing},
			},
			want: false,
		},
		{
			name: "shipped is not approved",
			items: []OrderItem{
				{Status: ItemStatusShipped},
			},
			want: false,
		},
		{
			name: "cancelled blocks approval",
			items: []OrderItem{
				{Status: ItemStatusApproved},
				{Status: ItemStatusCancelled},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllItemsApproved(tt.items))
		})
	}
}
