package ay

// envelopeTable[shape][step] is the precomputed float volume (in [0,1])
// for each of the 16 envelope shapes across its 128-step cycle. The shape
// nibble's bits are (continue, attack, alternate, hold) from bit 3 down to
// bit 0: continue means the envelope loops past its first ramp rather than
// decaying to zero; attack selects a rising first ramp; alternate flips
// direction on the loop; hold freezes at the ramp's terminal level instead
// of looping or decaying.
var envelopeTable [16][128]float32

func init() {
	for shape := 0; shape < 16; shape++ {
		for step := 0; step < 128; step++ {
			envelopeTable[shape][step] = envelopeLevel(byte(shape), step)
		}
	}
}

// envelopeLevel computes the volume for one (shape, step) pair directly,
// walking the same attack/hold/alternate/continue ramp the real chip's
// 5-bit envelope counter produces, rather than reading the precomputed
// table back (which init uses this to populate).
func envelopeLevel(shape byte, step int) float32 {
	attack := shape&0x04 != 0
	continuing := shape&0x08 != 0
	alternate := shape&0x02 != 0
	hold := shape&0x01 != 0

	dir := 1
	vol := -1
	if !attack {
		dir = -1
		vol = 32
	}

	held := false
	for i := 0; i <= step; i++ {
		if held {
			continue
		}
		vol += dir
		if vol < 0 || vol >= 32 {
			if continuing {
				if alternate {
					dir = -dir
				}
				if dir > 0 {
					vol = 0
				} else {
					vol = 31
				}
				if hold {
					held = true
					if dir > 0 {
						vol = 31
					} else {
						vol = 0
					}
				}
			} else {
				vol = 0
				held = true
			}
		}
	}
	return float32(vol) / 31.0
}
