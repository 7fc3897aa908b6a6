package trace

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelrt/internal/svdag"
	"voxelrt/internal/voxel"
	"voxelrt/internal/world"
)

// Hit is the result of one ray/chunk descent. Distance is -1 on a miss;
// Exit is the far parameter of the hit leaf's box, used by the compositor
// to measure transparent-volume thickness.
type Hit struct {
	Distance float32
	Exit     float32
	Material voxel.Material
	Normal   mgl32.Vec3
	Steps    int32
}

// Miss is the canonical miss record.
func Miss() Hit { return Hit{Distance: -1} }

// stackFrame carries a node's buffer offset relative to the chunk base,
// its depth and its world-space center. Centers rather than min corners
// keep the child-center arithmetic symmetric. (A GPU port would pack
// node|depth into one word; on the CPU a plain struct wins.)
type stackFrame struct {
	node   uint32
	depth  uint32
	center mgl32.Vec3
}

// maxStack bounds simultaneous pending children: up to seven siblings per
// level on top of one path, for chunk edges up to 2^15. Overflow is only
// reachable with a corrupt or pathological graph.
const maxStack = 128

// Traverse descends one chunk's SVDAG along the ray and returns the first
// leaf hit in front-to-back order, or a miss. The opaque flag selects the
// occlusion-test DAG instead of the material DAG.
func Traverse(reg *world.Registry, slot int, origin, dir mgl32.Vec3, maxDist float32, opaque bool) Hit {
	ch := reg.Chunk(slot)

	base, root, nodeWords, leafBase := ch.Base, ch.Root, ch.NodeWords, ch.LeafBase
	if opaque {
		base, root, nodeWords, leafBase = ch.OpaqueBase, ch.OpaqueRoot, ch.OpaqueNodeWords, ch.OpaqueLeafBase
	}
	// Node count of zero is the sole empty-chunk signal; root == base is
	// ordinary data.
	if nodeWords == 0 {
		return Miss()
	}

	edge := float32(ch.Edge)
	inv := invDir(dir)
	cmax := ch.Origin.Add(mgl32.Vec3{edge, edge, edge})
	tn, tf, ok := rayAABB(origin, inv, ch.Origin, cmax)
	if !ok || tf < 0 || tn > maxDist {
		return Miss()
	}
	tStart := tn
	if tStart < 0 {
		tStart = 0
	}

	var signMask uint32
	for a := 0; a < 3; a++ {
		if dir[a] < 0 {
			signMask |= 1 << a
		}
	}

	nodes := reg.Nodes
	var stack [maxStack]stackFrame
	half := edge / 2
	stack[0] = stackFrame{
		node:   root - base,
		depth:  0,
		center: ch.Origin.Add(mgl32.Vec3{half, half, half}),
	}
	sp := 1
	var steps int32

	for sp > 0 {
		sp--
		f := stack[sp]
		size := edge / float32(uint32(1)<<f.depth)
		h := size / 2
		he := mgl32.Vec3{h, h, h}
		ntn, ntf, ok := rayAABB(origin, inv, f.center.Sub(he), f.center.Add(he))
		if !ok || ntf < tStart || ntn > maxDist {
			continue
		}
		steps++

		off := base + f.node
		if nodes[off] == svdag.TagLeaf {
			t := ntn
			if t < tStart {
				t = tStart
			}
			return Hit{
				Distance: t,
				Exit:     ntf,
				Material: voxel.Material(reg.Leaves[leafBase+nodes[off+1]]),
				Normal:   faceNormal(origin, dir, inv, f.center, h, t),
				Steps:    steps,
			}
		}

		mask := nodes[off+1]
		q := h / 2
		// Far-to-near push order: octant i=0 XORed with the direction sign
		// mask is the nearest child, so it is pushed last and popped first.
		for i := 7; i >= 0; i-- {
			oct := uint32(i) ^ signMask
			if mask&(1<<oct) == 0 {
				continue
			}
			cc := childCenter(f.center, q, oct)
			qe := mgl32.Vec3{q, q, q}
			ctn, ctf, ok := rayAABB(origin, inv, cc.Sub(qe), cc.Add(qe))
			if !ok || ctf < tStart || ctn > maxDist {
				continue
			}
			if sp == maxStack {
				// Fail safe: report a solid diagnostic hit at the current
				// position instead of under-counting geometry.
				return Hit{
					Distance: maxf(ctn, tStart),
					Exit:     ctf,
					Material: voxel.MaterialDebug,
					Normal:   dir.Mul(-1).Normalize(),
					Steps:    steps,
				}
			}
			stack[sp] = stackFrame{
				node:   svdag.ChildOffset(nodes, off, mask, oct),
				depth:  f.depth + 1,
				center: cc,
			}
			sp++
		}
	}
	h := Miss()
	h.Steps = steps
	return h
}

func childCenter(c mgl32.Vec3, q float32, oct uint32) mgl32.Vec3 {
	if oct&1 != 0 {
		c[0] += q
	} else {
		c[0] -= q
	}
	if oct&2 != 0 {
		c[1] += q
	} else {
		c[1] -= q
	}
	if oct&4 != 0 {
		c[2] += q
	} else {
		c[2] -= q
	}
	return c
}

// faceNormal resolves which box face the ray entered by comparing the
// per-axis entry parameters against the achieved entry t. The epsilon
// widens with distance to tolerate precision loss far from the origin.
func faceNormal(origin, dir mgl32.Vec3, inv [3]float32, center mgl32.Vec3, half, t float32) mgl32.Vec3 {
	eps := t * 1e-5
	if eps < 0 {
		eps = -eps
	}
	if eps < 0.001 {
		eps = 0.001
	}

	bestAxis := 0
	bestT := float32(-1e30)
	for a := 0; a < 3; a++ {
		face := center[a] - half
		if dir[a] < 0 {
			face = center[a] + half
		}
		ft := (face - origin[a]) * inv[a]
		if ft-t <= eps && ft >= t-eps {
			bestAxis = a
			break
		}
		if ft > bestT && ft <= t+eps {
			bestT = ft
			bestAxis = a
		}
	}

	var n mgl32.Vec3
	if dir[bestAxis] < 0 {
		n[bestAxis] = 1
	} else {
		n[bestAxis] = -1
	}
	return n
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
