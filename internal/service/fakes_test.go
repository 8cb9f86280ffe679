package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"gorm.io/gorm"
)

// memStore 内存数据集，多个仓库共享以支持关联查询
type memStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*model.User
	roles     map[string]*model.Role
	perms     map[string]*model.Permission
	userRoles []*model.UserRole
	rolePerms []*model.RolePermission
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]*model.User),
		roles: make(map[string]*model.Role),
		perms: make(map[string]*model.Permission),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type memSnapshot struct {
	users     map[string]*model.User
	roles     map[string]*model.Role
	perms     map[string]*model.Permission
	userRoles []*model.UserRole
	rolePerms []*model.RolePermission
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		users:     make(map[string]*model.User, len(s.users)),
		roles:     make(map[string]*model.Role, len(s.roles)),
		perms:     make(map[string]*model.Permission, len(s.perms)),
		userRoles: append([]*model.UserRole(nil), s.userRoles...),
		rolePerms: append([]*model.RolePermission(nil), s.rolePerms...),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.roles {
		snap.roles[k] = v
	}
	for k, v := range s.perms {
		snap.perms[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.roles, s.perms = snap.users, snap.roles, snap.perms
	s.userRoles, s.rolePerms = snap.userRoles, snap.rolePerms
}

// memTx 出错时回滚到进入前的快照
type memTx struct {
	store *memStore
}

func (t memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

func pageOf[T any](list []T, page *repository.Pagination) []T {
	if page == nil {
		return list
	}
	start := page.Offset()
	if start >= len(list) {
		return []T{}
	}
	end := start + page.Size
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

func contains(s, sub string) bool {
	return sub == "" || strings.Contains(s, sub)
}

// ---- users ----

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == "" {
		user.ID = r.s.nextID("user")
	}
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memUserRepo) Update(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	user.UpdatedAt = time.Now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r memUserRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		cp.Status = status
		r.s.users[id] = &cp
	}
	return nil
}

func (r memUserRepo) UpdateLogin(ctx context.Context, id string, at time.Time, ip string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		cp.LastLoginTime = &at
		cp.LastLoginIP = ip
		r.s.users[id] = &cp
	}
	return nil
}

func (r memUserRepo) Delete(ctx context.Context, ids ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.users, id)
	}
	return nil
}

func (r memUserRepo) FindPage(ctx context.Context, filter *repository.UserFilter, page *repository.Pagination) ([]*model.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if filter == nil {
		filter = &repository.UserFilter{}
	}
	var list []*model.User
	for _, u := range r.s.users {
		if !contains(u.Username, filter.Username) || !contains(u.Nickname, filter.Nickname) ||
			!contains(string(u.Email), filter.Email) || !contains(string(u.Phone), filter.Phone) {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		cp := *u
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return pageOf(list, page), int64(len(list)), nil
}

func (r memUserRepo) ExistsBy(ctx context.Context, column, value, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == excludeID {
			continue
		}
		var v string
		switch column {
		case "username":
			v = u.Username
		case "email":
			v = string(u.Email)
		case "phone":
			v = string(u.Phone)
		default:
			return false, fmt.Errorf("unsupported column %s", column)
		}
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

// ---- roles ----

type memRoleRepo struct{ s *memStore }

func (r memRoleRepo) Create(ctx context.Context, role *model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if role.ID == "" {
		role.ID = r.s.nextID("role")
	}
	role.CreatedAt = time.Now()
	cp := *role
	r.s.roles[role.ID] = &cp
	return nil
}

func (r memRoleRepo) GetByID(ctx context.Context, id string) (*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *role
	return &cp, nil
}

func (r memRoleRepo) GetByCode(ctx context.Context, code string) (*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.Code == code {
			cp := *role
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memRoleRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Role, 0, len(ids))
	for _, id := range ids {
		if role, ok := r.s.roles[id]; ok {
			cp := *role
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memRoleRepo) ListEnabled(ctx context.Context) ([]*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Role, 0)
	for _, role := range r.s.roles {
		if role.IsEnabled() {
			cp := *role
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sort < out[j].Sort })
	return out, nil
}

func (r memRoleRepo) Update(ctx context.Context, role *model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *role
	r.s.roles[role.ID] = &cp
	return nil
}

func (r memRoleRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if role, ok := r.s.roles[id]; ok {
		cp := *role
		cp.Status = status
		r.s.roles[id] = &cp
	}
	return nil
}

func (r memRoleRepo) Delete(ctx context.Context, ids ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.roles, id)
	}
	return nil
}

func (r memRoleRepo) FindPage(ctx context.Context, filter *repository.RoleFilter, page *repository.Pagination) ([]*model.Role, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if filter == nil {
		filter = &repository.RoleFilter{}
	}
	var list []*model.Role
	for _, role := range r.s.roles {
		if !contains(role.Name, filter.Name) || !contains(role.Code, filter.Code) {
			continue
		}
		if filter.Status != "" && role.Status != filter.Status {
			continue
		}
		cp := *role
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return pageOf(list, page), int64(len(list)), nil
}

func (r memRoleRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.Code == code && role.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// ---- permissions ----

type memPermRepo struct{ s *memStore }

func (r memPermRepo) Create(ctx context.Context, perm *model.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if perm.ID == "" {
		perm.ID = r.s.nextID("perm")
	}
	perm.CreatedAt = time.Now()
	cp := *perm
	r.s.perms[perm.ID] = &cp
	return nil
}

func (r memPermRepo) GetByID(ctx context.Context, id string) (*model.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.perms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPermRepo) GetByCode(ctx context.Context, code string) (*model.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.perms {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memPermRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Permission, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.perms[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memPermRepo) ListAll(ctx context.Context, status string) ([]*model.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Permission, 0, len(r.s.perms))
	for _, p := range r.s.perms {
		if status != "" && p.Status != status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPermRepo) Update(ctx context.Context, perm *model.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *perm
	cp.Children = nil
	r.s.perms[perm.ID] = &cp
	return nil
}

func (r memPermRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.perms[id]; ok {
		cp := *p
		cp.Status = status
		r.s.perms[id] = &cp
	}
	return nil
}

func (r memPermRepo) Delete(ctx context.Context, ids ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.perms, id)
	}
	return nil
}

func (r memPermRepo) FindPage(ctx context.Context, filter *repository.PermissionFilter, page *repository.Pagination) ([]*model.Permission, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if filter == nil {
		filter = &repository.PermissionFilter{}
	}
	var list []*model.Permission
	for _, p := range r.s.perms {
		if !contains(p.Name, filter.Name) || !contains(p.Code, filter.Code) {
			continue
		}
		if (filter.Type != "" && p.Type != filter.Type) || (filter.Status != "" && p.Status != filter.Status) ||
			(filter.ParentID != "" && p.ParentID != filter.ParentID) {
			continue
		}
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return pageOf(list, page), int64(len(list)), nil
}

func (r memPermRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.perms {
		if p.Code == code && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memPermRepo) CountChildren(ctx context.Context, parentIDs, excludeIDs []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	parents := toSet(parentIDs)
	excluded := toSet(excludeIDs)
	var n int64
	for _, p := range r.s.perms {
		if parents[p.ParentID] && !excluded[p.ID] {
			n++
		}
	}
	return n, nil
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// ---- user_roles ----

type memUserRoleRepo struct{ s *memStore }

func (r memUserRoleRepo) CreateBatch(ctx context.Context, rows []*model.UserRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range rows {
		for _, existing := range r.s.userRoles {
			if existing.UserID == row.UserID && existing.RoleID == row.RoleID {
				return gorm.ErrDuplicatedKey
			}
		}
		if row.ID == "" {
			row.ID = r.s.nextID("ur")
		}
		cp := *row
		r.s.userRoles = append(r.s.userRoles, &cp)
	}
	return nil
}

func (r memUserRoleRepo) deleteWhere(match func(*model.UserRole) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.userRoles[:0:0]
	var n int64
	for _, row := range r.s.userRoles {
		if match(row) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.s.userRoles = kept
	return n
}

func (r memUserRoleRepo) Delete(ctx context.Context, userID, roleID string) (int64, error) {
	return r.deleteWhere(func(row *model.UserRole) bool { return row.UserID == userID && row.RoleID == roleID }), nil
}

func (r memUserRoleRepo) DeleteByUserID(ctx context.Context, userIDs ...string) (int64, error) {
	set := toSet(userIDs)
	return r.deleteWhere(func(row *model.UserRole) bool { return set[row.UserID] }), nil
}

func (r memUserRoleRepo) DeleteByRoleID(ctx context.Context, roleIDs ...string) (int64, error) {
	set := toSet(roleIDs)
	return r.deleteWhere(func(row *model.UserRole) bool { return set[row.RoleID] }), nil
}

func (r memUserRoleRepo) FindPage(ctx context.Context, filter *repository.UserRoleFilter, page *repository.Pagination) ([]*model.UserRole, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if filter == nil {
		filter = &repository.UserRoleFilter{}
	}
	var list []*model.UserRole
	for _, row := range r.s.userRoles {
		if (filter.UserID != "" && row.UserID != filter.UserID) || (filter.RoleID != "" && row.RoleID != filter.RoleID) {
			continue
		}
		cp := *row
		list = append(list, &cp)
	}
	return pageOf(list, page), int64(len(list)), nil
}

func (r memUserRoleRepo) ListRolesByUserID(ctx context.Context, userID string) ([]*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Role, 0)
	for _, row := range r.s.userRoles {
		if row.UserID != userID {
			continue
		}
		if role, ok := r.s.roles[row.RoleID]; ok && role.IsEnabled() {
			cp := *role
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sort < out[j].Sort })
	return out, nil
}

func (r memUserRoleRepo) ListUsersByRoleID(ctx context.Context, roleID string) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.User, 0)
	for _, row := range r.s.userRoles {
		if row.RoleID != roleID {
			continue
		}
		if u, ok := r.s.users[row.UserID]; ok && u.IsEnabled() {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memUserRoleRepo) HasRoleCode(ctx context.Context, userID, roleCode string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.userRoles {
		if row.UserID != userID {
			continue
		}
		if role, ok := r.s.roles[row.RoleID]; ok && role.IsEnabled() && role.Code == roleCode {
			return true, nil
		}
	}
	return false, nil
}

// ---- role_permissions ----

type memRolePermRepo struct{ s *memStore }

func (r memRolePermRepo) CreateBatch(ctx context.Context, rows []*model.RolePermission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range rows {
		for _, existing := range r.s.rolePerms {
			if existing.RoleID == row.RoleID && existing.PermissionID == row.PermissionID {
				return gorm.ErrDuplicatedKey
			}
		}
		if row.ID == "" {
			row.ID = r.s.nextID("rp")
		}
		cp := *row
		r.s.rolePerms = append(r.s.rolePerms, &cp)
	}
	return nil
}

func (r memRolePermRepo) deleteWhere(match func(*model.RolePermission) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.rolePerms[:0:0]
	var n int64
	for _, row := range r.s.rolePerms {
		if match(row) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.s.rolePerms = kept
	return n
}

func (r memRolePermRepo) Delete(ctx context.Context, roleID, permissionID string) (int64, error) {
	return r.deleteWhere(func(row *model.RolePermission) bool {
		return row.RoleID == roleID && row.PermissionID == permissionID
	}), nil
}

func (r memRolePermRepo) DeleteByRoleID(ctx context.Context, roleIDs ...string) (int64, error) {
	set := toSet(roleIDs)
	return r.deleteWhere(func(row *model.RolePermission) bool { return set[row.RoleID] }), nil
}

func (r memRolePermRepo) DeleteByPermissionID(ctx context.Context, permissionIDs ...string) (int64, error) {
	set := toSet(permissionIDs)
	return r.deleteWhere(func(row *model.RolePermission) bool { return set[row.PermissionID] }), nil
}

func (r memRolePermRepo) FindPage(ctx context.Context, filter *repository.RolePermissionFilter, page *repository.Pagination) ([]*model.RolePermission, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if filter == nil {
		filter = &repository.RolePermissionFilter{}
	}
	var list []*model.RolePermission
	for _, row := range r.s.rolePerms {
		if (filter.RoleID != "" && row.RoleID != filter.RoleID) || (filter.PermissionID != "" && row.PermissionID != filter.PermissionID) {
			continue
		}
		cp := *row
		list = append(list, &cp)
	}
	return pageOf(list, page), int64(len(list)), nil
}

func (r memRolePermRepo) ListPermissionsByRoleID(ctx context.Context, roleID string) ([]*model.Permission, error) {
	return r.ListPermissionsByRoleIDs(ctx, []string{roleID})
}

func (r memRolePermRepo) ListRolesByPermissionID(ctx context.Context, permissionID string) ([]*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Role, 0)
	for _, row := range r.s.rolePerms {
		if row.PermissionID != permissionID {
			continue
		}
		if role, ok := r.s.roles[row.RoleID]; ok && role.IsEnabled() {
			cp := *role
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memRolePermRepo) ListPermissionsByRoleIDs(ctx context.Context, roleIDs []string) ([]*model.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	roles := toSet(roleIDs)
	seen := make(map[string]bool)
	out := make([]*model.Permission, 0)
	for _, row := range r.s.rolePerms {
		if !roles[row.RoleID] || seen[row.PermissionID] {
			continue
		}
		if p, ok := r.s.perms[row.PermissionID]; ok && p.IsEnabled() {
			seen[p.ID] = true
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sort < out[j].Sort })
	return out, nil
}

// fixture 组装好的一套服务
type fixture struct {
	store    *memStore
	users    UserService
	roles    RoleService
	perms    PermissionService
	rolePerm RolePermissionService
	userRole UserRoleService
}

func newFixture() *fixture {
	s := newMemStore()
	tx := memTx{store: s}
	userRepo := memUserRepo{s}
	roleRepo := memRoleRepo{s}
	permRepo := memPermRepo{s}
	urRepo := memUserRoleRepo{s}
	rpRepo := memRolePermRepo{s}

	return &fixture{
		store:    s,
		users:    NewUserService(tx, userRepo, urRepo, nil),
		roles:    NewRoleService(tx, roleRepo, urRepo, rpRepo),
		perms:    NewPermissionService(tx, permRepo, rpRepo),
		rolePerm: NewRolePermissionService(tx, roleRepo, permRepo, rpRepo),
		userRole: NewUserRoleService(UserRoleServiceDeps{
			Tx:                 tx,
			UserRepo:           userRepo,
			RoleRepo:           roleRepo,
			UserRoleRepo:       urRepo,
			RolePermissionRepo: rpRepo,
			SuperRole:          model.RoleSuperAdmin,
		}),
	}
}
