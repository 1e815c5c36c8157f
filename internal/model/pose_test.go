package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoseTranslateAndRound(t *testing.T) {
	pose := Pose{pt(0, 0), pt(10, 0)}
	moved := pose.Translate(1.4, -0.6)
	assert.Equal(t, Pose{pt(1, -1), pt(11, -1)}, moved.Round())
	assert.Equal(t, Pose{pt(1, -1), pt(11, -1)}, moved.Floor())
	assert.Equal(t, Pose{pt(2, 0), pt(12, 0)}, moved.Ceil())
	assert.Equal(t, Pose{pt(0, 0), pt(10, 0)}, pose, "source pose must not change")
}

func TestPoseRotate(t *testing.T) {
	pose := Pose{pt(1, 0), pt(2, 1)}
	r := pose.Rotate(pt(0, 0), 90)
	assert.InDelta(t, 0, r[0].X, 1e-12)
	assert.InDelta(t, 1, r[0].Y, 1e-12)
	assert.InDelta(t, -1, r[1].X, 1e-12)
	assert.InDelta(t, 2, r[1].Y, 1e-12)

	back := r.Rotate(pt(0, 0), -90).Round()
	assert.Equal(t, pose, back)
}

func TestPoseMirrorVertex(t *testing.T) {
	p := lambdaProblem(t)
	pose := FromFigure(p)

	mirrored, err := pose.MirrorVertex(p, 1)
	require.NoError(t, err)
	assert.Equal(t, pt(2, -2), mirrored[1])
	assert.True(t, p.IsValidNorm(0, 8))

	_, err = pose.MirrorVertex(p, 0)
	assert.ErrorIs(t, err, ErrInvalidPose)
	_, err = pose.MirrorVertex(p, 7)
	assert.ErrorIs(t, err, ErrInvalidPose)
}

func TestPoseReflectVertex(t *testing.T) {
	p := lambdaProblem(t)
	pose := FromFigure(p)

	reflected, err := pose.ReflectVertex(p, 0)
	require.NoError(t, err)
	assert.Equal(t, pt(4, 4), reflected[0])
	assert.Equal(t, pose[1:], reflected[1:])

	_, err = pose.ReflectVertex(p, 1)
	assert.ErrorIs(t, err, ErrInvalidPose)
}

func TestPoseSnapToHole(t *testing.T) {
	h := newHole(t, squareHole())
	pose := Pose{pt(1, 1), pt(5, 5), pt(9, 10)}

	snapped := pose.SnapToHole(h, 1.5)
	assert.Equal(t, Pose{pt(0, 0), pt(5, 5), pt(10, 10)}, snapped)
}

func TestPoseCheckShape(t *testing.T) {
	p := squareProblem(t)
	assert.NoError(t, Pose{pt(0, 0), pt(1, 1)}.CheckShape(p))
	assert.ErrorIs(t, Pose{pt(0, 0)}.CheckShape(p), ErrInvalidPose)
}
