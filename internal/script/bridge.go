package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/lcdsim/internal/surface"
)

// registerLCD builds the lcd table handed to the entry point: every
// drawing primitive plus the plane dimensions. A fresh table is bound
// per frame so a script can never draw into a stale surface.
//
// Methods accept both lcd.drawBox(...) and lcd:drawBox(...) call
// styles.
func registerLCD(L *lua.LState, surf *surface.Surface) *lua.LTable {
	lcd := L.NewTable()

	// selfOffset returns 1 when the function was invoked with colon
	// syntax, shifting the positional arguments.
	selfOffset := func() int {
		if L.GetTop() > 0 && L.Get(1) == lua.LValue(lcd) {
			return 1
		}
		return 0
	}

	reg := func(name string, fn lua.LGFunction) {
		lcd.RawSetString(name, L.NewFunction(fn))
	}

	reg("clearBuffer", func(L *lua.LState) int {
		surf.ClearBuffer()
		return 0
	})
	reg("sendBuffer", func(L *lua.LState) int {
		surf.SendBuffer()
		return 0
	})
	reg("setDrawColor", func(L *lua.LState) int {
		off := selfOffset()
		surf.SetDrawColor(L.CheckInt(off + 1))
		return 0
	})
	reg("setFont", func(L *lua.LState) int {
		off := selfOffset()
		if L.Get(off+1) == lua.LNil {
			surf.SetFont("")
			return 0
		}
		surf.SetFont(L.CheckString(off + 1))
		return 0
	})
	reg("getFontAscentDescent", func(L *lua.LState) int {
		ascent, descent := surf.FontMetrics()
		L.Push(lua.LNumber(ascent))
		L.Push(lua.LNumber(descent))
		return 2
	})

	reg("drawPixel", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawPixel(L.CheckInt(off+1), L.CheckInt(off+2))
		return 0
	})
	reg("drawLine", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawLine(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckInt(off+3), L.CheckInt(off+4))
		return 0
	})
	reg("drawBox", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawBox(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckInt(off+3), L.CheckInt(off+4))
		return 0
	})
	reg("drawFrame", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawFrame(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckInt(off+3), L.CheckInt(off+4))
		return 0
	})
	reg("drawRBox", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawRBox(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckInt(off+3), L.CheckInt(off+4), L.CheckInt(off+5))
		return 0
	})
	reg("drawRFrame", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawRFrame(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckInt(off+3), L.CheckInt(off+4), L.CheckInt(off+5))
		return 0
	})
	reg("drawHLine", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawHLine(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckInt(off+3))
		return 0
	})
	reg("drawVLine", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawVLine(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckInt(off+3))
		return 0
	})
	reg("drawCircle", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawCircle(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckInt(off+3))
		return 0
	})
	reg("drawDisc", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawDisc(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckInt(off+3))
		return 0
	})

	reg("drawStr", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawStr(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckString(off+3))
		return 0
	})
	reg("drawUTF8", func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawUTF8(L.CheckInt(off+1), L.CheckInt(off+2), L.CheckString(off+3))
		return 0
	})

	blit := func(L *lua.LState) int {
		off := selfOffset()
		x := L.CheckInt(off + 1)
		y := L.CheckInt(off + 2)
		w := L.CheckInt(off + 3)
		h := L.CheckInt(off + 4)
		data := toBytes(L, L.Get(off+5))
		if data == nil {
			L.ArgError(off+5, "expected a byte table or string")
			return 0
		}
		if err := surf.DrawBitmap1(x, y, w, h, data); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}
	reg("drawBitmap1", blit)
	reg("drawBitmap", blit)
	reg("drawXBM", blit)

	drawFile := func(L *lua.LState) int {
		off := selfOffset()
		surf.DrawXBMFile(L.CheckString(off+1), L.CheckInt(off+2), L.CheckInt(off+3))
		return 0
	}
	reg("drawXBMfile", drawFile)
	reg("drawPBMfile", drawFile)

	lcd.RawSetString("width", lua.LNumber(surf.Width()))
	lcd.RawSetString("height", lua.LNumber(surf.Height()))

	return lcd
}

// toBytes converts a Lua byte table or string into a []byte, returning
// nil for any other value.
func toBytes(L *lua.LState, v lua.LValue) []byte {
	switch val := v.(type) {
	case lua.LString:
		return []byte(val)
	case *lua.LTable:
		n := val.Len()
		data := make([]byte, n)
		for i := 1; i <= n; i++ {
			num, ok := val.RawGetInt(i).(lua.LNumber)
			if !ok {
				return nil
			}
			data[i-1] = byte(int64(num) & 0xFF)
		}
		return data
	default:
		return nil
	}
}
