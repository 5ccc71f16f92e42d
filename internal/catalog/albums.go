package catalog

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib/internal/dialect"
	"github.com/mdriscoll/photoslib/internal/model"
)

// albumKindAlbum / albumKindFolder are the ZGENERICALBUM.ZKIND discriminant
// values Photos uses from G4 onward to collapse albums and folders into a
// single table.
const (
	albumKindFolder = 4000
	albumKindAlbum  = 2
)

// loadAlbumsAndFolders builds the album/folder forest and each album's
// ordered asset membership list. Edges that would introduce a cycle are
// rejected rather than applied (§3 invariant: the container hierarchy is a
// forest), and the offending folder is instead attached at the root so it
// stays reachable.
func loadAlbumsAndFolders(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	if isLegacyGeneration(d) {
		return loadAlbumsAndFoldersLegacy(db, d, lib, log)
	}

	type rawContainer struct {
		id       string
		title    string
		kind     int64
		parentPK sql.NullInt64
		parent   sql.NullString
	}

	query := fmt.Sprintf(`SELECT Z_PK, ZUUID, ZTITLE, ZKIND, ZPARENTFOLDER FROM %s`, d.AlbumTable)
	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("catalog: querying %s: %w", d.AlbumTable, err)
	}

	var containers []rawContainer
	for rows.Next() {
		var c rawContainer
		var pk int64
		var title sql.NullString
		if err := rows.Scan(&pk, &c.id, &title, &c.kind, &c.parentPK); err != nil {
			log.Warn().Err(err).Msg("catalog: skipping unreadable album/folder row")
			continue
		}
		c.title = title.String
		containerPKToUUID[pk] = c.id
		containers = append(containers, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// Second pass: every row's PK is now known, so parent FKs that point at
	// a sibling row (regardless of scan order) resolve correctly.
	for i := range containers {
		if containers[i].parentPK.Valid {
			if parentUUID, ok := containerPKToUUID[containers[i].parentPK.Int64]; ok {
				containers[i].parent = sql.NullString{String: parentUUID, Valid: true}
			}
		}
	}

	folderParent := make(map[string]string)
	folderChildren := make(map[string][]string)

	for _, c := range containers {
		if c.kind != albumKindFolder {
			continue
		}
		lib.AddFolder(&model.Folder{ID: c.id, Title: c.title})
		if c.parent.Valid {
			folderParent[c.id] = c.parent.String
		}
	}

	// Apply parent edges only where they don't introduce a cycle.
	for id, parent := range folderParent {
		if wouldCycle(id, parent, folderParent) {
			log.Warn().Str("folder", id).Msg("catalog: rejecting cyclic folder parent edge, attaching at root")
			continue
		}
		if f, ok := lib.Folder(id); ok {
			p := parent
			f.ParentID = &p
			folderChildren[parent] = append(folderChildren[parent], id)
		}
	}
	for parentID, children := range folderChildren {
		if f, ok := lib.Folder(parentID); ok {
			f.ChildFolderIDs = children
		}
	}

	for _, c := range containers {
		if c.kind == albumKindFolder {
			continue
		}
		album := &model.Album{ID: c.id, Title: c.title}
		if c.parent.Valid {
			if _, ok := lib.Folder(c.parent.String); ok {
				p := c.parent.String
				album.ParentFolderID = &p
				if f, ok := lib.Folder(c.parent.String); ok {
					f.AlbumIDs = append(f.AlbumIDs, c.id)
				}
			}
		}
		lib.AddAlbum(album)
	}

	return loadAlbumMembership(db, d, lib, log)
}

// containerPKToUUID bridges ZGENERICALBUM.Z_PK to its ZUUID for resolving
// parent-folder foreign keys and album membership rows; populated by the
// first pass of loadAlbumsAndFolders, which selects Z_PK. Kept as a
// package-level map, mirroring assetPKToAID, since catalog.Load never
// runs two loads concurrently against the same process.
var containerPKToUUID = make(map[int64]string)

func wouldCycle(start, firstParent string, parents map[string]string) bool {
	seen := map[string]bool{start: true}
	cur := firstParent
	for {
		if seen[cur] {
			return true
		}
		seen[cur] = true
		next, ok := parents[cur]
		if !ok {
			return false
		}
		cur = next
	}
}

func loadAlbumMembership(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	query := `
		SELECT j.Z_26ALBUMS, a.ZUUID
		FROM Z_26ASSETS j
		JOIN ZASSET a ON a.Z_PK = j.Z_3ASSETS1
		ORDER BY j.Z_FOK_26ASSETS
	`
	rows, err := db.Query(query)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: album membership join unavailable")
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var albumPK int64
		var aid sql.NullString
		if err := rows.Scan(&albumPK, &aid); err != nil {
			continue
		}
		albumUUID, ok := containerPKToUUID[albumPK]
		if !ok || !aid.Valid {
			continue
		}
		if album, ok := lib.Album(albumUUID); ok {
			album.AssetIDs = append(album.AssetIDs, aid.String)
			if a, ok := lib.Asset(aid.String); ok {
				a.AlbumIDs = append(a.AlbumIDs, albumUUID)
			}
		}
	}
	return rows.Err()
}

func loadAlbumsAndFoldersLegacy(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	folderParent := make(map[string]string)

	folderRows, err := db.Query(fmt.Sprintf(`SELECT uuid, name, parentFolderUuid FROM %s`, d.FolderTable))
	if err != nil {
		return fmt.Errorf("catalog: querying %s: %w", d.FolderTable, err)
	}
	for folderRows.Next() {
		var id, name string
		var parent sql.NullString
		if err := folderRows.Scan(&id, &name, &parent); err != nil {
			continue
		}
		lib.AddFolder(&model.Folder{ID: id, Title: name})
		if parent.Valid && parent.String != "" {
			folderParent[id] = parent.String
		}
	}
	folderRows.Close()
	if err := folderRows.Err(); err != nil {
		return err
	}

	for id, parent := range folderParent {
		if wouldCycle(id, parent, folderParent) {
			log.Warn().Str("folder", id).Msg("catalog: rejecting cyclic legacy folder parent edge")
			continue
		}
		if f, ok := lib.Folder(id); ok {
			p := parent
			f.ParentID = &p
			if pf, ok := lib.Folder(parent); ok {
				pf.ChildFolderIDs = append(pf.ChildFolderIDs, id)
			}
		}
	}

	albumRows, err := db.Query(fmt.Sprintf(`SELECT uuid, name, folderUuid FROM %s`, d.AlbumTable))
	if err != nil {
		return fmt.Errorf("catalog: querying %s: %w", d.AlbumTable, err)
	}
	defer albumRows.Close()
	for albumRows.Next() {
		var id, name string
		var folder sql.NullString
		if err := albumRows.Scan(&id, &name, &folder); err != nil {
			continue
		}
		album := &model.Album{ID: id, Title: name}
		if folder.Valid && folder.String != "" {
			if _, ok := lib.Folder(folder.String); ok {
				p := folder.String
				album.ParentFolderID = &p
				if f, ok := lib.Folder(folder.String); ok {
					f.AlbumIDs = append(f.AlbumIDs, id)
				}
			}
		}
		lib.AddAlbum(album)
	}
	return albumRows.Err()
}
