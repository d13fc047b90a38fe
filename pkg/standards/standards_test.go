package standards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadLookup(t *testing.T) {
	tests := []struct {
		in    string
		major float64
		pitch float64
	}{
		{"M10", 10, 1.5},
		{"m10", 10, 1.5},
		{" M 10 ", 10, 1.5},
		{"M10x1.5", 10, 1.5},
		{"10", 10, 1.5},
		{"M4", 4, 0.7},
		{"M2.5", 2.5, 0.45},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			th, ok := Thread(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.major, th.MajorDia)
			assert.Equal(t, tt.pitch, th.Pitch)
			assert.Less(t, th.MinorDia, th.MajorDia)
		})
	}
}

func TestThreadMiss(t *testing.T) {
	for _, in := range []string{"M11", "", "bolt", "NEMA17"} {
		_, ok := Thread(in)
		assert.False(t, ok, in)
	}
}

func TestApproxThreadFallback(t *testing.T) {
	th := ApproxThread(11)
	assert.Equal(t, "M11", th.Designation)
	assert.InDelta(t, 11*MinorDiameterRatio, th.MinorDia, 1e-9)

	// catalog sizes come back unchanged
	m10, _ := Thread("M10")
	assert.Equal(t, m10, ApproxThread(10))
}

func TestNearestThread(t *testing.T) {
	assert.Equal(t, "M10", NearestThread(10.2).Designation)
	assert.Equal(t, "M2", NearestThread(0.1).Designation)
	assert.Equal(t, "M36", NearestThread(100).Designation)
	// 7 is equidistant from M6 and M8; the larger wins
	assert.Equal(t, "M8", NearestThread(7).Designation)
}

func TestThreadsAscending(t *testing.T) {
	ts := Threads()
	require.NotEmpty(t, ts)
	for i := 1; i < len(ts); i++ {
		assert.Less(t, ts[i-1].MajorDia, ts[i].MajorDia)
	}
	ts[0].MajorDia = 999
	assert.NotEqual(t, 999.0, Threads()[0].MajorDia, "Threads must return a copy")
}

func TestStressArea(t *testing.T) {
	m10, _ := Thread("M10")
	// ISO 898-1 lists 58.0 mm^2 for M10
	assert.InDelta(t, 58.0, m10.StressArea(), 0.5)
}

func TestBearingLookup(t *testing.T) {
	for _, in := range []string{"608", "608ZZ", "608-2RS", "608 2rs", "bearing 608"} {
		b, ok := Bearing(in)
		require.True(t, ok, in)
		assert.Equal(t, 8.0, b.Bore)
		assert.Equal(t, 22.0, b.OuterDia)
	}
	_, ok := Bearing("9999")
	assert.False(t, ok)
}

func TestNearestBearing(t *testing.T) {
	b, ok := NearestBearing(8)
	require.True(t, ok)
	assert.Equal(t, 8.0, b.Bore)
	assert.Equal(t, "688", b.Designation)

	b, ok = NearestBearing(18)
	require.True(t, ok)
	assert.Equal(t, "6204", b.Designation)

	_, ok = NearestBearing(200)
	assert.False(t, ok)
}

func TestMotorMountLookup(t *testing.T) {
	for _, in := range []string{"NEMA 17", "Nema17", "nema-17", "17", "NEMA17"} {
		m, ok := MotorMount(in)
		require.True(t, ok, in)
		assert.Equal(t, "NEMA17", m.Designation)
		assert.Equal(t, 31.0, m.BoltSpacing)
		assert.Equal(t, 4, m.HoleCount)
	}
	_, ok := MotorMount("NEMA 99")
	assert.False(t, ok)
	_, ok = MotorMount("M17")
	assert.False(t, ok)
}

func TestBoltCircleDiameter(t *testing.T) {
	m, _ := MotorMount("NEMA17")
	assert.InDelta(t, 43.84, m.BoltCircleDiameter(), 0.01)
}
