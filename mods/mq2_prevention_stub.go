//go:build !windows

package mods

func (m *Mq2Prevention) scan() (string, bool) { return "", false }
