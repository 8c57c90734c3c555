package main

import (
	"testing"

	"github.com/pharmadist/pharmadist/internal/app"
	_ "github.com/pharmadist/pharmadist/internal/testing/guard"
)

func TestMainIsInertUnderTest(t *testing.T) {
	app.RefreshTestMode()
	if !app.InTestMode() {
		t.Fatal("expected test mode to be active")
	}
	main()
}
