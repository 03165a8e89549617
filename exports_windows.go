package main

/*
// Pure forwarders for the six dinput8.dll exports. The slots are filled
// with the real system DLL's addresses at attach; a slot that never
// resolved answers E_FAIL (NULL for the data-format getter) so callers
// fail cleanly instead of jumping through a null pointer.

#define EDGE_E_FAIL ((long)0x80004005L)

typedef long (__stdcall *di8create_t)(void* hinst, unsigned long version,
	const void* riid, void** out, void* unkOuter);
typedef long (__stdcall *comstub_t)(void);
typedef long (__stdcall *getclassobject_t)(const void* clsid, const void* iid, void** out);
typedef const void* (__stdcall *getdfjoystick_t)(void);

static di8create_t      real_direct_input8_create;
static comstub_t        real_dll_can_unload_now;
static getclassobject_t real_dll_get_class_object;
static comstub_t        real_dll_register_server;
static comstub_t        real_dll_unregister_server;
static getdfjoystick_t  real_getdf_di_joystick;

static void set_real_exports(void* create, void* canUnload, void* getClass,
	void* regSrv, void* unregSrv, void* getdf) {
	real_direct_input8_create  = (di8create_t)create;
	real_dll_can_unload_now    = (comstub_t)canUnload;
	real_dll_get_class_object  = (getclassobject_t)getClass;
	real_dll_register_server   = (comstub_t)regSrv;
	real_dll_unregister_server = (comstub_t)unregSrv;
	real_getdf_di_joystick     = (getdfjoystick_t)getdf;
}

__declspec(dllexport) long __stdcall DirectInput8Create(void* hinst,
	unsigned long version, const void* riid, void** out, void* unkOuter) {
	if (!real_direct_input8_create)
		return EDGE_E_FAIL;
	return real_direct_input8_create(hinst, version, riid, out, unkOuter);
}

__declspec(dllexport) long __stdcall DllCanUnloadNow(void) {
	if (!real_dll_can_unload_now)
		return EDGE_E_FAIL;
	return real_dll_can_unload_now();
}

__declspec(dllexport) long __stdcall DllGetClassObject(const void* clsid,
	const void* iid, void** out) {
	if (!real_dll_get_class_object)
		return EDGE_E_FAIL;
	return real_dll_get_class_object(clsid, iid, out);
}

__declspec(dllexport) long __stdcall DllRegisterServer(void) {
	if (!real_dll_register_server)
		return EDGE_E_FAIL;
	return real_dll_register_server();
}

__declspec(dllexport) long __stdcall DllUnregisterServer(void) {
	if (!real_dll_unregister_server)
		return EDGE_E_FAIL;
	return real_dll_unregister_server();
}

__declspec(dllexport) const void* __stdcall GetdfDIJoystick(void) {
	if (!real_getdf_di_joystick)
		return 0;
	return real_getdf_di_joystick();
}

// The Go runtime owns DllMain in a c-shared build, so unload work hangs
// off a destructor instead of DLL_PROCESS_DETACH.
extern void edgeProxyDetach(void);

__attribute__((destructor)) static void edge_proxy_unload(void) {
	edgeProxyDetach();
}
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

// realExportNames, in the order set_real_exports takes them.
var realExportNames = [6]string{
	"DirectInput8Create",
	"DllCanUnloadNow",
	"DllGetClassObject",
	"DllRegisterServer",
	"DllUnregisterServer",
	"GetdfDIJoystick",
}

// resolveRealExports looks the six symbols up in the real dinput8.dll and
// hands the addresses to the C forwarders. A missing symbol leaves its
// slot null, which the forwarder turns into a clean failure return.
func resolveRealExports(lib windows.Handle) {
	log := zap.S().Named("proxy")
	var addrs [6]unsafe.Pointer
	for i, name := range realExportNames {
		p, err := windows.GetProcAddress(lib, name)
		if err != nil || p == 0 {
			log.Warnf("export %s MISSING", name)
			continue
		}
		addrs[i] = unsafe.Pointer(p)
		log.Infof("export %s = %#x OK", name, p)
	}
	C.set_real_exports(addrs[0], addrs[1], addrs[2], addrs[3], addrs[4], addrs[5])
}
