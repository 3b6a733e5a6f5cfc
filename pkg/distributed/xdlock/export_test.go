package xdlock

import "github.com/go-redsync/redsync/v4"

func errTaken() error {
	return &redsync.ErrTaken{Nodes: []int{0}}
}
