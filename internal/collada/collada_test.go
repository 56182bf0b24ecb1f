package collada

import (
	"strings"
	"testing"

	"github.com/woozymasta/terra-road-forge/internal/meshbuild"
)

func triangleMesh() *meshbuild.Mesh {
	m := meshbuild.New(3, 1)
	a := m.AddVertex(meshbuild.Vertex{Position: meshbuild.Vec3{X: 0, Y: 0, Z: 0}})
	b := m.AddVertex(meshbuild.Vertex{Position: meshbuild.Vec3{X: 1, Y: 0, Z: 0}})
	c := m.AddVertex(meshbuild.Vertex{Position: meshbuild.Vec3{X: 0, Y: 1, Z: 0}})
	m.AddTriangle(a, b, c)
	m.FlatNormals()
	return m
}

func TestWriteRejectsEmptyMeshList(t *testing.T) {
	if _, err := Write(nil); err == nil {
		t.Fatal("expected an error for an empty mesh list")
	}
}

func TestWriteProducesWellFormedXMLWithYUp(t *testing.T) {
	out, err := Write([]NamedMesh{{Name: "road asphalt", Mesh: triangleMesh()}})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	doc := string(out)
	if !strings.Contains(doc, "<COLLADA") {
		t.Fatal("expected a COLLADA root element")
	}
	if !strings.Contains(doc, "Y_UP") {
		t.Fatal("expected up_axis Y_UP")
	}
	if !strings.Contains(doc, "library_geometries") {
		t.Fatal("expected a library_geometries element")
	}
	if !strings.Contains(doc, "mesh-road_asphalt") {
		t.Fatal("expected the sanitized geometry id derived from the mesh name")
	}
}

func TestWriteConvertsZUpToYUp(t *testing.T) {
	m := meshbuild.New(1, 0)
	m.AddVertex(meshbuild.Vertex{Position: meshbuild.Vec3{X: 1, Y: 2, Z: 3}})
	out, err := Write([]NamedMesh{{Name: "m", Mesh: m}})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	// (x,y,z)=(1,2,3) -> (x,z,-y) = (1,3,-2)
	if !strings.Contains(string(out), "1 3 -2") {
		t.Fatalf("expected converted position 1 3 -2 in output:\n%s", out)
	}
}
