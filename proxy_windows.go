package main

import "C"

import (
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/thjmod/edgeproxy/game"
	"github.com/thjmod/edgeproxy/hooks"
	"github.com/thjmod/edgeproxy/host"
	"github.com/thjmod/edgeproxy/host/types"
	"github.com/thjmod/edgeproxy/mods"
)

// The log and the config files live in the client directory, which is the
// working directory when the client loads the proxy.
const (
	proxyLogName = "dinput8_proxy.log"
	configDir    = "."
)

type proxyState struct {
	logger  *zap.Logger
	lock    *host.PresenceLock
	realDLL windows.Handle
	mgr     *hooks.Manager
	host    *host.Host
	worker  *host.InitWorker
}

var proxy proxyState

// The Go runtime finishes package initialization on DLL attach, so init
// is the c-shared equivalent of DLL_PROCESS_ATTACH.
func init() {
	onAttach()
}

func onAttach() {
	proxy.logger = host.InitLog(proxyLogName)
	log := zap.S().Named("proxy")
	log.Infof("%s v%s attaching as dinput8 proxy", types.APPNAME, types.VERSION)

	proxy.lock = host.AcquirePresenceLock()

	if err := loadRealDInput8(); err != nil {
		// The forwarders answer E_FAIL until the real library is there.
		// The mod host still comes up; input is the client's problem.
		log.Errorf("real dinput8.dll: %v", err)
	}

	base := clientBase()
	probe := game.NewProbe(base)
	probe.AttachClientCalls()

	proxy.mgr = hooks.NewManager(hooks.NewNativeEngine())
	h := host.New(probe)
	h.SetChatSink(probe.ChatSink())
	proxy.host = h

	if err := mods.RegisterAll(h, base, proxy.mgr, configDir); err != nil {
		log.Errorf("register mods: %v", err)
	}

	proxy.worker = host.NewInitWorker(game.GameWindowPresent, func() {
		h.InitializeAll()
		host.InstallBridge(h, proxy.mgr, base)
		log.Infof("proxy up, %d mods active", h.ActiveMods())
	})
	proxy.worker.Start()
	log.Info("init worker launched")
}

//export edgeProxyDetach
func edgeProxyDetach() {
	onDetach()
}

func onDetach() {
	log := zap.S().Named("proxy")
	log.Info("dinput8 proxy detaching")

	if proxy.worker != nil {
		proxy.worker.Stop()
	}
	if h := proxy.host; h != nil {
		h.PreShutdown = func() { host.RemoveBridge(proxy.mgr) }
		h.ShutdownAll()
	}
	if proxy.mgr != nil {
		proxy.mgr.RemoveAll()
	}
	if proxy.realDLL != 0 {
		windows.FreeLibrary(proxy.realDLL)
		proxy.realDLL = 0
	}
	proxy.lock.Release()

	log.Info("dinput8 proxy unloaded")
	if proxy.logger != nil {
		proxy.logger.Sync()
	}
}

// loadRealDInput8 loads the system copy of dinput8.dll and resolves the
// forwarded exports. GetSystemDirectory answers SysWOW64 for a 32-bit
// process on 64-bit Windows, which is where the real 32-bit DLL lives.
func loadRealDInput8() error {
	sysDir, err := windows.GetSystemDirectory()
	if err != nil {
		return err
	}
	path := sysDir + `\dinput8.dll`
	lib, err := windows.LoadLibrary(path)
	if err != nil {
		return err
	}
	proxy.realDLL = lib
	zap.S().Named("proxy").Infof("real dinput8 loaded from %s", path)
	resolveRealExports(lib)
	return nil
}

// clientBase is the load address of the client executable, the reference
// point for every rebased offset.
func clientBase() uintptr {
	h, err := windows.GetModuleHandle(nil)
	if err != nil {
		return 0
	}
	return uintptr(h)
}
