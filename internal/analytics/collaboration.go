package analytics

import (
	"sort"

	"chartlens/pkg/contracts/domain"
)

type edgeTally struct {
	source, target       string
	sourceKey, targetKey string
	tracks               map[string]bool
	slots                int
}

type nodeTally struct {
	key       string
	name      string
	tracks    map[string]bool
	neighbors map[string]bool
}

// Collaborations builds the undirected co-credit graph. Edge weight counts
// distinct tracks crediting both artists. Slots counts their chart slots.
func Collaborations(tracks []domain.Track) domain.CollaborationView {
	view := domain.CollaborationView{
		Nodes: []domain.CollaborationNode{},
		Edges: []domain.CollaborationEdge{},
	}

	edges := make(map[[2]string]*edgeTally)
	nodes := make(map[string]*nodeTally)
	collabTracks := make(map[string]bool)

	for _, t := range tracks {
		if !t.IsCollaboration() {
			continue
		}
		view.CollabSlots++
		collabTracks[t.Key] = true

		for _, a := range t.Artists {
			k := domain.ArtistKey(a)
			n, ok := nodes[k]
			if !ok {
				n = &nodeTally{key: k, name: a, tracks: map[string]bool{}, neighbors: map[string]bool{}}
				nodes[k] = n
			}
			n.tracks[t.Key] = true
		}

		for i := 0; i < len(t.Artists); i++ {
			for j := i + 1; j < len(t.Artists); j++ {
				a, b := t.Artists[i], t.Artists[j]
				ka, kb := domain.ArtistKey(a), domain.ArtistKey(b)
				if ka == kb {
					continue
				}
				if kb < ka {
					a, b, ka, kb = b, a, kb, ka
				}
				id := [2]string{ka, kb}
				e, ok := edges[id]
				if !ok {
					e = &edgeTally{source: a, target: b, sourceKey: ka, targetKey: kb, tracks: map[string]bool{}}
					edges[id] = e
				}
				e.tracks[t.Key] = true
				e.slots++
				nodes[ka].neighbors[kb] = true
				nodes[kb].neighbors[ka] = true
			}
		}
	}

	view.CollabTracks = len(collabTracks)
	view.Ratio = ratio(float64(view.CollabSlots), float64(len(tracks)))

	for _, e := range edges {
		view.Edges = append(view.Edges, domain.CollaborationEdge{
			Source: e.source,
			Target: e.target,
			Weight: len(e.tracks),
			Slots:  e.slots,
		})
	}
	sort.Slice(view.Edges, func(i, j int) bool {
		a, b := view.Edges[i], view.Edges[j]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if ka, kb := domain.ArtistKey(a.Source), domain.ArtistKey(b.Source); ka != kb {
			return ka < kb
		}
		return domain.ArtistKey(a.Target) < domain.ArtistKey(b.Target)
	})

	for _, n := range nodes {
		view.Nodes = append(view.Nodes, domain.CollaborationNode{
			Artist:       n.name,
			Degree:       len(n.neighbors),
			CollabTracks: len(n.tracks),
		})
	}
	sort.Slice(view.Nodes, func(i, j int) bool {
		a, b := view.Nodes[i], view.Nodes[j]
		if a.Degree != b.Degree {
			return a.Degree > b.Degree
		}
		if a.CollabTracks != b.CollabTracks {
			return a.CollabTracks > b.CollabTracks
		}
		return domain.ArtistKey(a.Artist) < domain.ArtistKey(b.Artist)
	})
	return view
}
