package controller

import (
	"context"

	"fleetops/internal/gateway"
	"fleetops/internal/models"
)

// Trucks manages the truck roster view.
type Trucks struct {
	*Collection[models.Truck]
}

// NewTrucks builds the truck controller over the given gateway.
func NewTrucks(api *gateway.Client) *Trucks {
	return &Trucks{newCollection(api, "/trucks", func(t models.Truck) string { return t.ID })}
}

// Create registers a new truck and adds it to local state.
func (c *Trucks) Create(ctx context.Context, req models.CreateTruckRequest) (models.Truck, error) {
	var created models.Truck
	if err := c.api.Post(ctx, c.path, req, &created); err != nil {
		c.surface(err)
		return models.Truck{}, err
	}
	c.updateItem(created.ID, created)
	return created, nil
}

// Update patches a truck and refreshes the confirmed record locally.
func (c *Trucks) Update(ctx context.Context, id string, req models.UpdateTruckRequest) (models.Truck, error) {
	var updated models.Truck
	if err := c.api.Put(ctx, c.path+"/"+id, req, &updated); err != nil {
		c.surface(err)
		return models.Truck{}, err
	}
	c.updateItem(id, updated)
	return updated, nil
}

// Delete removes a truck. The server cascades to the truck's dependent
// records; locally only the roster entry is dropped.
func (c *Trucks) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, c.path+"/"+id); err != nil {
		c.surface(err)
		return err
	}
	c.removeItem(id)
	return nil
}
