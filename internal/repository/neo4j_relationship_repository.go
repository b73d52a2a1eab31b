package repository

import (
	"context"
	"time"

	"relgraph/internal/apperror"
	"relgraph/internal/model"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jRelationshipRepository 基于 Neo4j 的关系边存储
// 节点 (:User {id})，边 [:RELATIONSHIP {status_id, created_at}]
type Neo4jRelationshipRepository struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jRelationshipRepository(driver neo4j.DriverWithContext) *Neo4jRelationshipRepository {
	return &Neo4jRelationshipRepository{driver: driver}
}

// EnsureSchema 创建 User.id 唯一约束和边上 status_id 索引
func (r *Neo4jRelationshipRepository) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	queries := []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		`CREATE INDEX relationship_status_id IF NOT EXISTS FOR ()-[r:RELATIONSHIP]-() ON (r.status_id)`,
	}
	for _, q := range queries {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, q, nil)
			return nil, err
		})
		if err != nil {
			return apperror.Storage("ensure neo4j schema", err)
		}
	}
	return nil
}

func (r *Neo4jRelationshipRepository) read(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, work)
}

func (r *Neo4jRelationshipRepository) write(ctx context.Context, work neo4j.ManagedTransactionWork) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, work)
	return err
}

func (r *Neo4jRelationshipRepository) Exists(ctx context.Context, from, to, statusID uint, symmetrical bool) (bool, error) {
	query := `
		MATCH (a:User {id: $from})-[r:RELATIONSHIP {status_id: $status}]->(b:User {id: $to})
		RETURN count(r) > 0 AS found
	`
	if symmetrical {
		query = `
			MATCH (a:User {id: $from})-[r:RELATIONSHIP {status_id: $status}]-(b:User {id: $to})
			RETURN count(r) > 0 AS found
		`
	}
	params := map[string]any{"from": int64(from), "to": int64(to), "status": int64(statusID)}

	found, err := r.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return singleBool(ctx, tx, query, params)
	})
	if err != nil {
		return false, apperror.Storage("check relationship", err)
	}
	return found.(bool), nil
}

func (r *Neo4jRelationshipRepository) ExistsAny(ctx context.Context, froms []uint, to, statusID uint) (bool, error) {
	if len(froms) == 0 {
		return false, nil
	}
	ids := make([]int64, len(froms))
	for i, id := range froms {
		ids[i] = int64(id)
	}
	query := `
		MATCH (a:User)-[r:RELATIONSHIP {status_id: $status}]->(b:User {id: $to})
		WHERE a.id IN $froms
		RETURN count(r) > 0 AS found
	`
	params := map[string]any{"froms": ids, "to": int64(to), "status": int64(statusID)}

	found, err := r.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return singleBool(ctx, tx, query, params)
	})
	if err != nil {
		return false, apperror.Storage("check second degree relationship", err)
	}
	return found.(bool), nil
}

func singleBool(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) (bool, error) {
	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return false, err
	}
	rec, err := res.Single(ctx)
	if err != nil {
		return false, err
	}
	found, _, err := neo4j.GetRecordValue[bool](rec, "found")
	return found, err
}

// Add MERGE 保证幂等，对称关系两条边在同一写事务内。
// 关系 MERGE 本身不加锁，并发时可能各自创建一条边，所以先按 id 升序给两端节点加写锁。
func (r *Neo4jRelationshipRepository) Add(ctx context.Context, from, to, statusID uint, symmetrical bool) error {
	lockQuery := `
		UNWIND $ids AS id
		MERGE (u:User {id: id})
		SET u._lock = true
		REMOVE u._lock
	`
	query := `
		MATCH (a:User {id: $from}), (b:User {id: $to})
		MERGE (a)-[r:RELATIONSHIP {status_id: $status}]->(b)
		ON CREATE SET r.created_at = $now
	`
	now := time.Now().UnixMilli()
	err := r.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, lockQuery, map[string]any{"ids": lockOrder(from, to)}); err != nil {
			return nil, err
		}
		pairs := [][2]uint{{from, to}}
		if symmetrical && from != to {
			pairs = append(pairs, [2]uint{to, from})
		}
		for _, p := range pairs {
			_, err := tx.Run(ctx, query, map[string]any{
				"from":   int64(p[0]),
				"to":     int64(p[1]),
				"status": int64(statusID),
				"now":    now,
			})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return apperror.Storage("add relationship", err)
}

// lockOrder 固定加锁顺序，避免 a->b 与 b->a 并发写入时互相死锁
func lockOrder(a, b uint) []int64 {
	switch {
	case a == b:
		return []int64{int64(a)}
	case a < b:
		return []int64{int64(a), int64(b)}
	default:
		return []int64{int64(b), int64(a)}
	}
}

func (r *Neo4jRelationshipRepository) Remove(ctx context.Context, from, to, statusID uint, symmetrical bool) error {
	query := `
		MATCH (a:User {id: $from})-[r:RELATIONSHIP {status_id: $status}]->(b:User {id: $to})
		DELETE r
	`
	if symmetrical {
		query = `
			MATCH (a:User {id: $from})-[r:RELATIONSHIP {status_id: $status}]-(b:User {id: $to})
			DELETE r
		`
	}
	err := r.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{
			"from":   int64(from),
			"to":     int64(to),
			"status": int64(statusID),
		})
		return nil, err
	})
	return apperror.Storage("remove relationship", err)
}

func (r *Neo4jRelationshipRepository) EdgesFrom(ctx context.Context, userID, statusID uint) ([]model.Relationship, error) {
	query := `
		MATCH (a:User {id: $user})-[r:RELATIONSHIP {status_id: $status}]->(b:User)
		RETURN id(r) AS rid, a.id AS from_id, b.id AS to_id, r.created_at AS created_at
		ORDER BY r.created_at DESC, id(r) DESC
	`
	rels, err := r.edges(ctx, query, userID, statusID)
	return rels, apperror.Storage("list relationships from user", err)
}

func (r *Neo4jRelationshipRepository) EdgesTo(ctx context.Context, userID, statusID uint) ([]model.Relationship, error) {
	query := `
		MATCH (a:User)-[r:RELATIONSHIP {status_id: $status}]->(b:User {id: $user})
		RETURN id(r) AS rid, a.id AS from_id, b.id AS to_id, r.created_at AS created_at
		ORDER BY r.created_at DESC, id(r) DESC
	`
	rels, err := r.edges(ctx, query, userID, statusID)
	return rels, apperror.Storage("list relationships to user", err)
}

func (r *Neo4jRelationshipRepository) edges(ctx context.Context, query string, userID, statusID uint) ([]model.Relationship, error) {
	params := map[string]any{"user": int64(userID), "status": int64(statusID)}
	result, err := r.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		rels := make([]model.Relationship, 0)
		for res.Next(ctx) {
			rec := res.Record()
			rid, _, err := neo4j.GetRecordValue[int64](rec, "rid")
			if err != nil {
				return nil, err
			}
			fromID, _, err := neo4j.GetRecordValue[int64](rec, "from_id")
			if err != nil {
				return nil, err
			}
			toID, _, err := neo4j.GetRecordValue[int64](rec, "to_id")
			if err != nil {
				return nil, err
			}
			created, _, err := neo4j.GetRecordValue[int64](rec, "created_at")
			if err != nil {
				return nil, err
			}
			at := time.UnixMilli(created)
			rels = append(rels, model.Relationship{
				ID:         uint(rid),
				FromUserID: uint(fromID),
				ToUserID:   uint(toID),
				StatusID:   statusID,
				CreatedAt:  at,
				UpdatedAt:  at,
			})
		}
		return rels, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]model.Relationship), nil
}

func (r *Neo4jRelationshipRepository) DeleteByStatus(ctx context.Context, statusID uint) error {
	err := r.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `MATCH ()-[r:RELATIONSHIP {status_id: $status}]->() DELETE r`,
			map[string]any{"status": int64(statusID)})
		return nil, err
	})
	return apperror.Storage("delete relationships by status", err)
}
