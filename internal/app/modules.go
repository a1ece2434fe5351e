package app

import (
	"github.com/modelhost/containerstd/internal/script"
	"github.com/modelhost/containerstd/modules/artifact"
	"github.com/modelhost/containerstd/modules/env"
	"github.com/modelhost/containerstd/modules/proxy"
	"github.com/modelhost/containerstd/modules/std"
)

// coreModules is the definitive list of all script modules compiled into
// the hostd binary.
var coreModules = []script.Module{
	&std.Module{},
	&env.Module{},
	&proxy.Module{},
	&artifact.Module{},
}
