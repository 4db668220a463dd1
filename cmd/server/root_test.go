package main

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

func TestServe_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = serve(ctx, quietEcho(), ln.Addr().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen "+ln.Addr().String())
	assert.ErrorIs(t, err, syscall.EADDRINUSE)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	e := quietEcho()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, e, "127.0.0.1:0") }()

	require.Eventually(t, func() bool { return e.ListenerAddr() != nil }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestRun_PingFailureReportedOnce(t *testing.T) {
	// a port nothing listens on
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", strconv.Itoa(port))
	t.Setenv("LOG_LEVEL", "debug")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env")})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot ping database")
	assert.Contains(t, out.String(), "pinging database")
	assert.NotContains(t, out.String(), "cannot ping database")
}
