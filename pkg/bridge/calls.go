package bridge

/*
#include <stdlib.h>
#include <stdio.h>
#include <string.h>
*/
import "C"
import (
	"encoding/json"
	"fmt"
	"time"
	"unsafe"

	"github.com/geohunt/arcoin/internal/dispatcher"
)

// cfg defines how calls into this plugin are handled.
var cfg configStruct

func init() {
	cfg.init()
}

// called by the host to get the plugin version
//
//export ArcoinVersion
func ArcoinVersion(output *C.char, outputsize C.size_t) {
	replyToHost(cfg.version, output, outputsize)
}

// called by the host for argument-less commands: clearTarget,
// attemptCollect, endSession
//
//export ArcoinCall
func ArcoinCall(output *C.char, outputsize C.size_t, input *C.char) {
	command := C.GoString(input)

	// Built-in clock probe, useful for latency measurement from the host
	if command == "timestamp" {
		replyToHost(fmt.Sprintf("%d", time.Now().UTC().UnixNano()), output, outputsize)
		return
	}

	dispatch(command, nil, output, outputsize)
}

// called by the host for commands carrying arguments: startSession,
// setTarget, gpsFix, poseUpdate, sensorUpdate, trackingUpdate
//
//export ArcoinCallArgs
func ArcoinCallArgs(output *C.char, outputsize C.size_t, input *C.char, argv **C.char, argc C.int) {
	command := C.GoString(input)
	args := parseArgsFromC(argv, argc)
	dispatch(command, args, output, outputsize)
}

func dispatch(command string, args []string, output *C.char, outputsize C.size_t) {
	if cfg.dispatcher == nil || !cfg.dispatcher.HasHandler(command) {
		replyToHost(fmt.Sprintf(`["error", %q, "no handler registered"]`, command), output, outputsize)
		return
	}

	result, err := cfg.dispatcher.Dispatch(dispatcher.Command{
		Name:      command,
		Args:      args,
		Timestamp: time.Now(),
	})
	replyToHost(formatDispatchResponse(result, err), output, outputsize)
}

// parseArgsFromC converts a C argv array to a Go string slice.
func parseArgsFromC(argv **C.char, argc C.int) []string {
	var offset = unsafe.Sizeof(uintptr(0))
	var data []string
	for index := C.int(0); index < argc; index++ {
		data = append(data, C.GoString(*argv))
		argv = (**C.char)(unsafe.Pointer(uintptr(unsafe.Pointer(argv)) + offset))
	}
	return data
}

// formatDispatchResponse formats a dispatcher result as a JSON reply.
func formatDispatchResponse(result any, err error) string {
	if err != nil {
		return fmt.Sprintf(`["error", %q]`, err.Error())
	}
	if result == nil {
		return `["ok"]`
	}
	data, merr := json.Marshal(result)
	if merr != nil {
		return fmt.Sprintf(`["error", %q]`, merr.Error())
	}
	return fmt.Sprintf(`["ok", %s]`, data)
}

// replyToHost writes a response into the host-provided output buffer,
// truncating to the buffer size the host declared.
func replyToHost(response string, output *C.char, outputsize C.size_t) {
	result := C.CString(response)
	defer C.free(unsafe.Pointer(result))
	var size = C.strlen(result) + 1
	if size > outputsize {
		size = outputsize
	}
	C.memmove(unsafe.Pointer(output), unsafe.Pointer(result), size)
}
