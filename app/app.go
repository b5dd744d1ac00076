package fsapp

import (
	appbase "github.com/warptools/fwsetup/app/base"
	_ "github.com/warptools/fwsetup/app/healthcheck"
	_ "github.com/warptools/fwsetup/app/logview"
	_ "github.com/warptools/fwsetup/app/setup"
)

var App = appbase.App
