package viewmodel

import (
	"context"
	"log"
	"sync"
	"time"

	"swms-portal/internal/refresh"
	"swms-portal/internal/websocket"
)

// Registry mounts one view per user on first render and keeps it polling
// until it is unmounted.
type Registry struct {
	deps            Deps
	parent          context.Context
	refreshInterval time.Duration
	driverPoll      time.Duration

	mu      sync.Mutex
	drivers map[string]*DriverDashboard
	users   map[string]*UserDashboard
	admins  map[string]*AdminDashboard
}

// NewRegistry creates a registry. Pollers stop when parent is done.
func NewRegistry(parent context.Context, deps Deps, refreshInterval, driverPoll time.Duration) *Registry {
	return &Registry{
		deps:            deps,
		parent:          parent,
		refreshInterval: refreshInterval,
		driverPoll:      driverPoll,
		drivers:         make(map[string]*DriverDashboard),
		users:           make(map[string]*UserDashboard),
		admins:          make(map[string]*AdminDashboard),
	}
}

// Driver returns the mounted driver view, loading it with ctx on first use.
func (r *Registry) Driver(ctx context.Context, driverID string) *DriverDashboard {
	r.mu.Lock()
	vm, ok := r.drivers[driverID]
	if !ok {
		vm = NewDriverDashboard(r.deps, driverID)
		vm.attach(refresh.Schedule(r.parent, r.refreshInterval, vm.Load))
		r.drivers[driverID] = vm
		log.Printf("🔄 Mounted driver dashboard for %s", driverID)
	}
	r.mu.Unlock()

	vm.mountOnce.Do(func() { vm.Load(ctx) })
	return vm
}

func (r *Registry) User(ctx context.Context, userID string) *UserDashboard {
	r.mu.Lock()
	vm, ok := r.users[userID]
	if !ok {
		vm = NewUserDashboard(r.deps, userID)
		vm.attach(refresh.Schedule(r.parent, r.refreshInterval, vm.Load))
		r.users[userID] = vm
		log.Printf("🔄 Mounted user dashboard for %s", userID)
	}
	r.mu.Unlock()

	vm.mountOnce.Do(func() { vm.Load(ctx) })
	return vm
}

// Admin mounts the admin view with two pollers: counters on the regular
// interval and the driver roster on the faster one.
func (r *Registry) Admin(ctx context.Context, adminID string) *AdminDashboard {
	r.mu.Lock()
	vm, ok := r.admins[adminID]
	if !ok {
		vm = NewAdminDashboard(r.deps, adminID)
		vm.attach(refresh.Schedule(r.parent, r.refreshInterval, func(ctx context.Context) { <-vm.Refresh(ctx) }))
		vm.attach(refresh.Schedule(r.parent, r.driverPoll, vm.LoadDrivers))
		r.admins[adminID] = vm
		log.Printf("🔄 Mounted admin dashboard for %s", adminID)
	}
	r.mu.Unlock()

	vm.mountOnce.Do(func() { vm.Load(ctx) })
	return vm
}

// Trigger asks a mounted view for an immediate refresh.
func (r *Registry) Trigger(view websocket.View, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch view {
	case websocket.ViewDriver:
		if vm, ok := r.drivers[userID]; ok {
			vm.trigger()
		}
	case websocket.ViewUser:
		if vm, ok := r.users[userID]; ok {
			vm.trigger()
		}
	case websocket.ViewAdmin:
		if vm, ok := r.admins[userID]; ok {
			vm.trigger()
		}
	}
}

// UnmountAll stops every view, e.g. when the session changes hands.
func (r *Registry) UnmountAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, vm := range r.drivers {
		vm.unmount()
		delete(r.drivers, id)
	}
	for id, vm := range r.users {
		vm.unmount()
		delete(r.users, id)
	}
	for id, vm := range r.admins {
		vm.unmount()
		delete(r.admins, id)
	}
	log.Println("🔄 Unmounted all dashboards")
}

// Mounted counts the live views.
func (r *Registry) Mounted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drivers) + len(r.users) + len(r.admins)
}
