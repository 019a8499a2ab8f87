package remotefiles

import "strings"

// Device-side snippets. They target MicroPython but fall back to the
// CPython module names so they also work against the unix port.

const listScript = `
import os
try:
    import ujson as json
except ImportError:
    import json
d = %s
r = []
for e in os.ilistdir(d):
    name = e[0]
    mode = e[1]
    size = e[3] if len(e) > 3 else 0
    r.append([name, mode, size])
print(json.dumps(r))
`

const readScript = `
import sys
try:
    import ubinascii as binascii
except ImportError:
    import binascii
with open(%s, 'rb') as f:
    while True:
        b = f.read(256)
        if not b:
            break
        sys.stdout.write(binascii.hexlify(b))
`

const mkdirScript = `
import os
os.mkdir(%s)
`

const removeScript = `
import os
p = %s
try:
    os.remove(p)
except OSError:
    os.rmdir(p)
`

const removeTreeScript = `
import os
def rmtree(p):
    for e in os.ilistdir(p):
        child = p + '/' + e[0]
        if e[1] & 0x4000:
            rmtree(child)
        else:
            os.remove(child)
    os.rmdir(p)
rmtree(%s)
`

// staged reset for boards exposing the microcontroller module; plain
// machine.reset covers the rest.
const stageResetScript = `
def on_next_reset(x):
    try:
        import microcontroller
    except ImportError:
        if x == 'NORMAL':
            return ''
        return 'reset mode only supported on CircuitPython'
    try:
        microcontroller.on_next_reset(getattr(microcontroller.RunMode, x))
    except ValueError as e:
        return str(e)
    return ''
def reset():
    try:
        import microcontroller
    except ImportError:
        import machine as microcontroller
    microcontroller.reset()
`

// pyString renders s as a python string literal.
func pyString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// pyBytes renders data as a python bytes literal, hex-escaped throughout.
func pyBytes(data []byte) string {
	const hexdigits = "0123456789abcdef"
	var b strings.Builder
	b.Grow(3 + 4*len(data))
	b.WriteString("b'")
	for _, c := range data {
		b.WriteString(`\x`)
		b.WriteByte(hexdigits[c>>4])
		b.WriteByte(hexdigits[c&0xf])
	}
	b.WriteByte('\'')
	return b.String()
}
