/*
 * colors.go, part of gobem.
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package bemplot

import "math"

//hsv2RGB converts a color from HSV (h in degrees, s and v in [0,1]) to RGB.
func hsv2RGB(h, s, v float64) (uint8, uint8, uint8) {
	top := 255 * v
	if s == 0 {
		return uint8(top), uint8(top), uint8(top)
	}
	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i
	p := 1 - s
	q := 1 - s*f
	t := 1 - s*(1-f)
	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = 1, t, p
	case 1:
		r, g, b = q, 1, p
	case 2:
		r, g, b = p, 1, t
	case 3:
		r, g, b = p, q, 1
	case 4:
		r, g, b = t, p, 1
	default:
		r, g, b = 1, p, q
	}
	return uint8(r * top), uint8(g * top), uint8(b * top)
}

//colors returns the color for the key-th of steps series. The hues
//go from red to violet, jumping over the yellows, which are hard to see on white.
func colors(key, steps int) (r, g, b uint8) {
	hp := float64(key)*260.0/float64(steps) + 20.0
	h := hp + 20.0
	if hp < 55 {
		h = hp - 20.0
	}
	return hsv2RGB(h, 1, 1)
}
