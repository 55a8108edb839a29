// Package licensekey генерирует неугадываемые ключи лицензий.
package licensekey

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// Generator строит ключ из id ассета, id пользователя, времени выдачи,
// монотонного snowflake id узла и случайного uuid.
type Generator struct {
	node *snowflake.Node
}

// New создаёт генератор для узла nodeID (0..1023).
func New(nodeID int64) (*Generator, error) {
	const op = "licensekey.New"
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Generator{node: node}, nil
}

// Generate возвращает ключ в base64url без паддинга (43 символа, только [A-Za-z0-9_-]).
func (g *Generator) Generate(assetID, userID string, issuedAt time.Time) string {
	h := sha256.New()
	h.Write([]byte(assetID))
	h.Write([]byte{'|'})
	h.Write([]byte(userID))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatInt(issuedAt.UnixNano(), 10)))
	h.Write([]byte{'|'})
	h.Write([]byte(g.node.Generate().String()))
	h.Write([]byte{'|'})
	h.Write([]byte(uuid.NewString()))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
