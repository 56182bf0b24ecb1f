// Package collada writes a minimal Collada 1.4.1 document for one or
// more meshes, per spec.md §6: emitted at world origin, Y-up, so placing
// the asset at (0,0,0) in-engine aligns with the terrain.
package collada

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/woozymasta/terra-road-forge/internal/errs"
	"github.com/woozymasta/terra-road-forge/internal/meshbuild"
)

// NamedMesh pairs a mesh with the name used for its Collada geometry and
// node IDs (e.g. a material or spline identifier).
type NamedMesh struct {
	Name string
	Mesh *meshbuild.Mesh
}

type colladaRoot struct {
	XMLName xml.Name `xml:"COLLADA"`
	Xmlns   string   `xml:"xmlns,attr"`
	Version string   `xml:"version,attr"`
	Asset   asset    `xml:"asset"`
	Geoms   libraryGeometries    `xml:"library_geometries"`
	Scenes  libraryVisualScenes  `xml:"library_visual_scenes"`
	Scene   sceneRef             `xml:"scene"`
}

type asset struct {
	UpAxis string `xml:"up_axis"`
}

type libraryGeometries struct {
	Geometries []geometry `xml:"geometry"`
}

type geometry struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	Mesh meshXML `xml:"mesh"`
}

type meshXML struct {
	Sources    []source   `xml:"source"`
	Vertices   vertices   `xml:"vertices"`
	Triangles  triangles  `xml:"triangles"`
}

type source struct {
	ID            string        `xml:"id,attr"`
	FloatArray    floatArray    `xml:"float_array"`
	TechniqueCom  techniqueCommon `xml:"technique_common"`
}

type floatArray struct {
	ID    string `xml:"id,attr"`
	Count int    `xml:"count,attr"`
	Text  string `xml:",chardata"`
}

type techniqueCommon struct {
	Accessor accessor `xml:"accessor"`
}

type accessor struct {
	Source string  `xml:"source,attr"`
	Count  int     `xml:"count,attr"`
	Stride int     `xml:"stride,attr"`
	Params []param `xml:"param"`
}

type param struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type vertices struct {
	ID    string `xml:"id,attr"`
	Input input  `xml:"input"`
}

type input struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   *int   `xml:"offset,attr,omitempty"`
	Set      *int   `xml:"set,attr,omitempty"`
}

type triangles struct {
	Count  int     `xml:"count,attr"`
	Inputs []input `xml:"input"`
	P      string  `xml:"p"`
}

type libraryVisualScenes struct {
	VisualScenes []visualScene `xml:"visual_scene"`
}

type visualScene struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Nodes []node `xml:"node"`
}

type node struct {
	ID             string         `xml:"id,attr"`
	Name           string         `xml:"name,attr"`
	InstanceGeometry instanceGeometry `xml:"instance_geometry"`
}

type instanceGeometry struct {
	URL string `xml:"url,attr"`
}

type sceneRef struct {
	InstanceVisualScene instanceVisualScene `xml:"instance_visual_scene"`
}

type instanceVisualScene struct {
	URL string `xml:"url,attr"`
}

// Write renders meshes into a single Collada document, converting each
// mesh's Z-up vertices to Y-up via (x,y,z) -> (x,z,-y), and returns the
// serialized XML bytes (including the XML declaration).
func Write(meshes []NamedMesh) ([]byte, error) {
	if len(meshes) == 0 {
		return nil, &errs.ValidationError{Rule: "meshes", Message: "at least one mesh is required"}
	}

	root := colladaRoot{
		Xmlns:   "http://www.collada.org/2005/11/COLLADASchema",
		Version: "1.4.1",
		Asset:   asset{UpAxis: "Y_UP"},
		Scene:   sceneRef{InstanceVisualScene: instanceVisualScene{URL: "#scene"}},
	}

	var sceneNodes []node
	for i, nm := range meshes {
		id := sanitizeID(nm.Name, i)
		root.Geoms.Geometries = append(root.Geoms.Geometries, buildGeometry(id, nm.Mesh))
		sceneNodes = append(sceneNodes, node{
			ID:               "node-" + id,
			Name:             nm.Name,
			InstanceGeometry: instanceGeometry{URL: "#" + id},
		})
	}
	root.Scenes.VisualScenes = []visualScene{{ID: "scene", Name: "scene", Nodes: sceneNodes}}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("collada: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func sanitizeID(name string, index int) string {
	if name == "" {
		return fmt.Sprintf("mesh-%d", index)
	}
	return "mesh-" + strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, name)
}

func buildGeometry(id string, m *meshbuild.Mesh) geometry {
	positions := make([]float64, 0, len(m.Vertices)*3)
	normals := make([]float64, 0, len(m.Vertices)*3)
	uvs := make([]float64, 0, len(m.Vertices)*2)
	for _, v := range m.Vertices {
		// Z-up -> Y-up, preserving handedness per spec.md §4.10.
		positions = append(positions, v.Position.X, v.Position.Z, -v.Position.Y)
		normals = append(normals, v.Normal.X, v.Normal.Z, -v.Normal.Y)
		uvs = append(uvs, v.UV.U, v.UV.V)
	}

	posID := id + "-positions"
	normID := id + "-normals"
	uvID := id + "-uvs"
	vertID := id + "-vertices"

	posOffset, normOffset, uvOffset := 0, 1, 2

	var p strings.Builder
	for _, idx := range m.Triangles {
		fmt.Fprintf(&p, "%d %d %d ", idx, idx, idx)
	}

	return geometry{
		ID:   id,
		Name: id,
		Mesh: meshXML{
			Sources: []source{
				floatSource(posID, positions, 3, []string{"X", "Y", "Z"}),
				floatSource(normID, normals, 3, []string{"X", "Y", "Z"}),
				floatSource(uvID, uvs, 2, []string{"S", "T"}),
			},
			Vertices: vertices{ID: vertID, Input: input{Semantic: "POSITION", Source: "#" + posID}},
			Triangles: triangles{
				Count: m.NumTriangles(),
				Inputs: []input{
					{Semantic: "VERTEX", Source: "#" + vertID, Offset: intPtr(posOffset)},
					{Semantic: "NORMAL", Source: "#" + normID, Offset: intPtr(normOffset)},
					{Semantic: "TEXCOORD", Source: "#" + uvID, Offset: intPtr(uvOffset), Set: intPtr(0)},
				},
				P: strings.TrimSpace(p.String()),
			},
		},
	}
}

func floatSource(id string, values []float64, stride int, paramNames []string) source {
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%g", v)
	}
	params := make([]param, len(paramNames))
	for i, n := range paramNames {
		params[i] = param{Name: n, Type: "float"}
	}
	return source{
		ID: id,
		FloatArray: floatArray{
			ID:    id + "-array",
			Count: len(values),
			Text:  sb.String(),
		},
		TechniqueCom: techniqueCommon{Accessor: accessor{
			Source: "#" + id + "-array",
			Count:  len(values) / stride,
			Stride: stride,
			Params: params,
		}},
	}
}

func intPtr(v int) *int { return &v }
