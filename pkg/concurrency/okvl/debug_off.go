//go:build !okvldebug

package okvl

const debugInvariants = false
